package llm_test

import (
	"testing"

	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/service/llm"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
)

func textMessage(role types.MessageRole, text string) chat.UIMessage {
	return chat.UIMessage{
		ID:    types.NewMessageID(),
		Role:  role,
		Parts: []chat.UIPart{chat.NewTextPart(text)},
	}
}

func TestSplitPrompt(t *testing.T) {
	t.Run("final user text becomes the prompt", func(t *testing.T) {
		messages := []chat.UIMessage{
			textMessage(types.RoleUser, "first"),
			textMessage(types.RoleAssistant, "reply"),
			textMessage(types.RoleUser, "second"),
		}

		rest, prompt, err := llm.SplitPrompt(messages)
		gt.NoError(t, err)
		gt.Equal(t, prompt, "second")
		gt.A(t, rest).Length(2)
	})

	t.Run("fails on empty conversation", func(t *testing.T) {
		_, _, err := llm.SplitPrompt(nil)
		gt.Error(t, err)
	})

	t.Run("fails when conversation ends with assistant", func(t *testing.T) {
		_, _, err := llm.SplitPrompt([]chat.UIMessage{
			textMessage(types.RoleUser, "question"),
			textMessage(types.RoleAssistant, "answer"),
		})
		gt.Error(t, err)
	})

	t.Run("fails when final user message has no text", func(t *testing.T) {
		_, _, err := llm.SplitPrompt([]chat.UIMessage{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleUser,
				Parts: []chat.UIPart{
					chat.NewToolPart("generateFlashcard", types.NewToolCallID(), nil),
				},
			},
		})
		gt.Error(t, err)
	})
}

func TestBuildHistory(t *testing.T) {
	t.Run("empty input yields nil history", func(t *testing.T) {
		history, err := llm.BuildHistory(nil)
		gt.NoError(t, err)
		gt.V(t, history).Nil()
	})

	t.Run("roles are mapped", func(t *testing.T) {
		history, err := llm.BuildHistory([]chat.UIMessage{
			textMessage(types.RoleUser, "question"),
			textMessage(types.RoleAssistant, "answer"),
		})
		gt.NoError(t, err)
		gt.A(t, history.Messages).Length(2)
		gt.Equal(t, history.Messages[0].Role, gollem.RoleUser)
		gt.Equal(t, history.Messages[1].Role, gollem.RoleAssistant)
	})

	t.Run("in-flight tool part is rendered as a note", func(t *testing.T) {
		history, err := llm.BuildHistory([]chat.UIMessage{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				Parts: []chat.UIPart{
					chat.NewToolPart("generateFlashcard", types.NewToolCallID(),
						map[string]any{"type": "basic"}),
				},
			},
		})
		gt.NoError(t, err)
		gt.A(t, history.Messages).Length(1)

		content := history.Messages[0].Contents[0]
		text, err := content.GetTextContent()
		gt.NoError(t, err)
		gt.S(t, text.Text).Contains("pending_tool_call").Contains("generateFlashcard")
	})
}
