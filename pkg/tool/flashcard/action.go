package flashcard

import (
	"context"
	"log/slog"
	"slices"

	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/urfave/cli/v3"
)

const optionCount = 4

// Action implements the interfaces.Tool interface for the generateFlashcard
// tool. It validates and normalizes the card arguments and returns them
// unchanged; deriving cards from the transcript happens elsewhere.
type Action struct{}

var _ interfaces.Tool = &Action{}

func New() *Action {
	return &Action{}
}

func (x *Action) Name() string {
	return types.ToolNameGenerateFlashcard.String()
}

func (x *Action) Flags() []cli.Flag {
	return []cli.Flag{}
}

func (x *Action) Configure(_ context.Context) error {
	return nil
}

func (x *Action) LogValue() slog.Value {
	return slog.GroupValue()
}

func (x *Action) Prompt(_ context.Context) (string, error) {
	return "", nil
}

func (x *Action) Specs(_ context.Context) ([]gollem.ToolSpec, error) {
	return []gollem.ToolSpec{
		{
			Name:        types.ToolNameGenerateFlashcard.String(),
			Description: "Generate a flashcard for learning. This tool is the only way flashcard content reaches the user-visible transcript; never describe a card in plain text instead of calling it.",
			Parameters: map[string]*gollem.Parameter{
				"type": {
					Type:        gollem.TypeString,
					Description: "The kind of flashcard to create",
					Enum:        []string{string(types.CardTypeBasic), string(types.CardTypeMultipleChoice)},
					Required:    true,
				},
				"question": {
					Type:        gollem.TypeString,
					Description: "The question for the flashcard",
					Required:    true,
				},
				"answer": {
					Type:        gollem.TypeString,
					Description: "The correct answer to the question",
					Required:    true,
				},
				"options": {
					Type:        gollem.TypeArray,
					Description: "Exactly 4 answer choices including the correct answer. Required for multiple-choice, ignored for basic.",
					Items: &gollem.Parameter{
						Type: gollem.TypeString,
					},
				},
				"explanation": {
					Type:        gollem.TypeString,
					Description: "Optional explanation of the answer",
				},
			},
		},
	}, nil
}

func (x *Action) Run(_ context.Context, name string, args map[string]any) (map[string]any, error) {
	if name != types.ToolNameGenerateFlashcard.String() {
		return nil, goerr.New("invalid function name", goerr.V("name", name))
	}

	cardType, err := stringArg(args, "type")
	if err != nil {
		return nil, err
	}
	if err := types.CardType(cardType).Validate(); err != nil {
		return nil, err
	}
	question, err := stringArg(args, "question")
	if err != nil {
		return nil, err
	}
	answer, err := stringArg(args, "answer")
	if err != nil {
		return nil, err
	}

	result := map[string]any{
		"type":     cardType,
		"question": question,
		"answer":   answer,
	}

	if types.CardType(cardType) == types.CardTypeMultipleChoice {
		options, err := optionsArg(args)
		if err != nil {
			return nil, err
		}
		if len(options) != optionCount {
			return nil, goerr.New("multiple-choice requires exactly 4 options",
				goerr.V("count", len(options)))
		}
		if !slices.Contains(options, answer) {
			return nil, goerr.New("answer must be one of the options",
				goerr.V("answer", answer), goerr.V("options", options))
		}
		result["options"] = options
	}
	// For basic cards any supplied options are dropped: the options field
	// is only ever present for multiple-choice.

	if explanation, ok := args["explanation"].(string); ok && explanation != "" {
		result["explanation"] = explanation
	}

	return result, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", goerr.New(key+" is required", goerr.V("args", args))
	}
	return v, nil
}

func optionsArg(args map[string]any) ([]string, error) {
	raw, ok := args["options"]
	if !ok || raw == nil {
		return nil, goerr.New("options is required for multiple-choice")
	}

	switch vs := raw.(type) {
	case []string:
		return vs, nil
	case []any:
		options := make([]string, 0, len(vs))
		for _, v := range vs {
			s, ok := v.(string)
			if !ok {
				return nil, goerr.New("options must be strings", goerr.V("option", v))
			}
			options = append(options, s)
		}
		return options, nil
	}
	return nil, goerr.New("options must be an array of strings")
}
