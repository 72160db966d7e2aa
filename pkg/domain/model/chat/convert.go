package chat

import (
	"context"

	"github.com/lectern-dev/lectern/pkg/utils/clock"
)

// ToUIMessages converts persisted messages into the transient part-based
// form. A non-empty content becomes one text part, then one tool part per
// invocation. Invocations without a result map to state "input-available"
// (in flight). Messages that end up with zero parts are dropped.
func ToUIMessages(messages []Message) []UIMessage {
	result := make([]UIMessage, 0, len(messages))
	for _, msg := range messages {
		var parts []UIPart

		if msg.Content != "" {
			parts = append(parts, NewTextPart(msg.Content))
		}

		for _, tool := range msg.ToolInvocations {
			if tool.Completed() {
				parts = append(parts, NewCompletedToolPart(tool.ToolName, tool.ToolCallID, tool.Args, tool.Result))
			} else {
				parts = append(parts, NewToolPart(tool.ToolName, tool.ToolCallID, tool.Args))
			}
		}

		if len(parts) == 0 {
			continue
		}

		result = append(result, UIMessage{
			ID:    msg.ID,
			Role:  msg.Role,
			Parts: parts,
		})
	}
	return result
}

// ToMessages converts transient messages back into the persisted form. Text
// parts are concatenated in order into Content. Each tool part becomes one
// invocation; a completed part's output becomes the result. Timestamps are
// not round-tripped: every produced message is stamped with the current
// time from ctx.
func ToMessages(ctx context.Context, uiMessages []UIMessage) []Message {
	now := clock.Now(ctx)

	result := make([]Message, 0, len(uiMessages))
	for _, msg := range uiMessages {
		var content string
		var invocations []ToolInvocation

		for _, part := range msg.Parts {
			switch {
			case part.IsText():
				content += part.Text

			case part.IsTool():
				invocations = append(invocations, toolPartToInvocation(part))
			}
		}

		result = append(result, Message{
			ID:              msg.ID,
			Role:            msg.Role,
			Content:         content,
			ToolInvocations: invocations,
			Timestamp:       now,
		})
	}
	return result
}

func toolPartToInvocation(part UIPart) ToolInvocation {
	args := part.Input
	if args == nil {
		args = map[string]any{}
	}

	// A completed part may arrive without its input (some clients drop it
	// after streaming). When the output looks like a flashcard, rebuild the
	// args from it so the invocation stays self-describing.
	if part.Completed() && len(part.Input) == 0 {
		if rebuilt, ok := argsFromOutput(part.Output); ok {
			args = rebuilt
		}
	}

	var result map[string]any
	if part.Completed() {
		result = part.Output
	}

	return ToolInvocation{
		ToolCallID: part.ToolCallID,
		ToolName:   part.ToolName(),
		Args:       args,
		Result:     result,
	}
}

// argsFromOutput reconstructs tool args from a flashcard-shaped output. It
// requires type, question and answer to be present as non-empty strings;
// options and explanation are carried over only when present.
func argsFromOutput(output map[string]any) (map[string]any, bool) {
	cardType, ok := nonEmptyString(output, "type")
	if !ok {
		return nil, false
	}
	question, ok := nonEmptyString(output, "question")
	if !ok {
		return nil, false
	}
	answer, ok := nonEmptyString(output, "answer")
	if !ok {
		return nil, false
	}

	args := map[string]any{
		"type":     cardType,
		"question": question,
		"answer":   answer,
	}
	if options, ok := output["options"]; ok && options != nil {
		args["options"] = options
	}
	if explanation, ok := output["explanation"]; ok && explanation != nil {
		args["explanation"] = explanation
	}
	return args, true
}

func nonEmptyString(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
