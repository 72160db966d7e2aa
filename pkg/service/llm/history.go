package llm

import (
	"encoding/json"

	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// SplitPrompt separates the final user message from the preceding
// conversation. The final message's text becomes the generation prompt; the
// rest is fed to the model as history. Fails when the conversation does not
// end with a user message carrying text.
func SplitPrompt(messages []chat.UIMessage) ([]chat.UIMessage, string, error) {
	if len(messages) == 0 {
		return nil, "", goerr.New("no messages to respond to", goerr.T(errs.TagInvalidRequest))
	}

	last := messages[len(messages)-1]
	if last.Role != types.RoleUser {
		return nil, "", goerr.New("conversation does not end with a user message",
			goerr.T(errs.TagInvalidRequest), goerr.V("role", last.Role))
	}

	var prompt string
	for _, part := range last.Parts {
		if part.IsText() {
			prompt += part.Text
		}
	}
	if prompt == "" {
		return nil, "", goerr.New("final user message has no text", goerr.T(errs.TagInvalidRequest))
	}

	return messages[:len(messages)-1], prompt, nil
}

// BuildHistory converts transient messages into gollem's portable history.
// Text parts map to text contents. In-flight tool parts are rendered as a
// JSON note so the model keeps seeing the pending call; completed tool
// parts must be pruned by the caller before this point.
func BuildHistory(messages []chat.UIMessage) (*gollem.History, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	history := &gollem.History{}
	for _, msg := range messages {
		var contents []gollem.MessageContent

		for _, part := range msg.Parts {
			switch {
			case part.IsText():
				content, err := gollem.NewTextContent(part.Text)
				if err != nil {
					return nil, goerr.Wrap(err, "failed to build text content")
				}
				contents = append(contents, content)

			case part.IsTool():
				note, err := pendingToolNote(part)
				if err != nil {
					return nil, err
				}
				contents = append(contents, note)
			}
		}

		if len(contents) == 0 {
			continue
		}

		role := gollem.RoleUser
		if msg.Role == types.RoleAssistant {
			role = gollem.RoleAssistant
		}

		history.Messages = append(history.Messages, gollem.Message{
			Role:     role,
			Contents: contents,
		})
	}

	return history, nil
}

func pendingToolNote(part chat.UIPart) (gollem.MessageContent, error) {
	raw, err := json.Marshal(map[string]any{
		"pending_tool_call": map[string]any{
			"toolCallId": part.ToolCallID,
			"toolName":   part.ToolName(),
			"input":      part.Input,
		},
	})
	if err != nil {
		return gollem.MessageContent{}, goerr.Wrap(err, "failed to encode pending tool call")
	}

	content, err := gollem.NewTextContent(string(raw))
	if err != nil {
		return gollem.MessageContent{}, goerr.Wrap(err, "failed to build tool note content")
	}
	return content, nil
}
