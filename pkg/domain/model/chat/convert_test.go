package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/utils/clock"
	"github.com/m-mizutani/gt"
)

func TestToUIMessages(t *testing.T) {
	t.Run("text content becomes a text part", func(t *testing.T) {
		msgs := chat.ToUIMessages([]chat.Message{
			{
				ID:      types.NewMessageID(),
				Role:    types.RoleUser,
				Content: "explain photosynthesis",
			},
		})
		gt.A(t, msgs).Length(1)
		gt.A(t, msgs[0].Parts).Length(1)
		gt.True(t, msgs[0].Parts[0].IsText())
		gt.Equal(t, msgs[0].Parts[0].Text, "explain photosynthesis")
	})

	t.Run("completed invocation becomes output-available tool part", func(t *testing.T) {
		callID := types.NewToolCallID()
		msgs := chat.ToUIMessages([]chat.Message{
			{
				ID:      types.NewMessageID(),
				Role:    types.RoleAssistant,
				Content: "here is a card",
				ToolInvocations: []chat.ToolInvocation{
					{
						ToolCallID: callID,
						ToolName:   "generateFlashcard",
						Args:       map[string]any{"type": "basic"},
						Result:     map[string]any{"type": "basic", "question": "Q", "answer": "A"},
					},
				},
			},
		})
		gt.A(t, msgs).Length(1)
		gt.A(t, msgs[0].Parts).Length(2)

		part := msgs[0].Parts[1]
		gt.True(t, part.IsTool())
		gt.Equal(t, part.Type, "tool-generateFlashcard")
		gt.Equal(t, part.ToolCallID, callID)
		gt.Equal(t, part.State, chat.UIPartStateOutputAvailable)
		gt.V(t, part.Output).NotNil()
	})

	t.Run("invocation without result becomes input-available", func(t *testing.T) {
		msgs := chat.ToUIMessages([]chat.Message{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				ToolInvocations: []chat.ToolInvocation{
					{
						ToolCallID: types.NewToolCallID(),
						ToolName:   "generateFlashcard",
						Args:       map[string]any{"type": "basic"},
					},
				},
			},
		})
		gt.A(t, msgs).Length(1)
		gt.Equal(t, msgs[0].Parts[0].State, chat.UIPartStateInputAvailable)
		gt.V(t, msgs[0].Parts[0].Output).Nil()
	})

	t.Run("message with no content and no invocations is dropped", func(t *testing.T) {
		msgs := chat.ToUIMessages([]chat.Message{
			{ID: types.NewMessageID(), Role: types.RoleAssistant},
			{ID: types.NewMessageID(), Role: types.RoleUser, Content: "hi"},
		})
		gt.A(t, msgs).Length(1)
		gt.Equal(t, msgs[0].Parts[0].Text, "hi")
	})
}

func TestToMessages(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), func() time.Time { return now })

	t.Run("text parts are concatenated in order", func(t *testing.T) {
		msgs := chat.ToMessages(ctx, []chat.UIMessage{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				Parts: []chat.UIPart{
					chat.NewTextPart("hello "),
					chat.NewTextPart("world"),
				},
			},
		})
		gt.A(t, msgs).Length(1)
		gt.Equal(t, msgs[0].Content, "hello world")
		gt.Equal(t, msgs[0].Timestamp, now)
	})

	t.Run("completed tool part keeps its input as args", func(t *testing.T) {
		callID := types.NewToolCallID()
		input := map[string]any{"type": "basic", "question": "Q", "answer": "A"}
		output := map[string]any{"type": "basic", "question": "Q", "answer": "A"}

		msgs := chat.ToMessages(ctx, []chat.UIMessage{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				Parts: []chat.UIPart{
					chat.NewCompletedToolPart("generateFlashcard", callID, input, output),
				},
			},
		})
		gt.A(t, msgs).Length(1)
		gt.A(t, msgs[0].ToolInvocations).Length(1)

		inv := msgs[0].ToolInvocations[0]
		gt.Equal(t, inv.ToolCallID, callID)
		gt.Equal(t, inv.ToolName, "generateFlashcard")
		gt.Equal(t, inv.Args, input)
		gt.Equal(t, inv.Result, output)
	})

	t.Run("unrecognized tool tags are preserved verbatim", func(t *testing.T) {
		msgs := chat.ToMessages(ctx, []chat.UIMessage{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				Parts: []chat.UIPart{
					chat.NewCompletedToolPart("summarizeNotes", types.NewToolCallID(),
						map[string]any{"topic": "cells"}, map[string]any{"summary": "ok"}),
				},
			},
		})
		gt.A(t, msgs).Length(1)

		inv := msgs[0].ToolInvocations[0]
		gt.Equal(t, inv.ToolName, types.ToolName("summarizeNotes"))
		gt.False(t, inv.ToolName.Known())

		// And the tag survives the trip back to transient form.
		back := chat.ToUIMessages(msgs)
		gt.A(t, back).Length(1)
		gt.Equal(t, back[0].Parts[0].ToolName(), types.ToolName("summarizeNotes"))
	})

	t.Run("args are reconstructed from output when input is missing", func(t *testing.T) {
		output := map[string]any{
			"type":        "multiple-choice",
			"question":    "Which planet is largest?",
			"answer":      "Jupiter",
			"options":     []any{"Mars", "Jupiter", "Venus", "Earth"},
			"explanation": "Jupiter is the largest planet.",
		}
		msgs := chat.ToMessages(ctx, []chat.UIMessage{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				Parts: []chat.UIPart{
					chat.NewCompletedToolPart("generateFlashcard", types.NewToolCallID(), nil, output),
				},
			},
		})

		inv := msgs[0].ToolInvocations[0]
		gt.Equal(t, inv.Args["type"], "multiple-choice")
		gt.Equal(t, inv.Args["question"], "Which planet is largest?")
		gt.Equal(t, inv.Args["answer"], "Jupiter")
		gt.V(t, inv.Args["options"]).NotNil()
		gt.Equal(t, inv.Args["explanation"], "Jupiter is the largest planet.")
	})

	t.Run("reconstruction requires type, question and answer", func(t *testing.T) {
		output := map[string]any{"type": "basic", "question": "Q"} // answer missing
		msgs := chat.ToMessages(ctx, []chat.UIMessage{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				Parts: []chat.UIPart{
					chat.NewCompletedToolPart("generateFlashcard", types.NewToolCallID(), nil, output),
				},
			},
		})

		inv := msgs[0].ToolInvocations[0]
		gt.A(t, mapKeys(inv.Args)).Length(0)
		gt.Equal(t, inv.Result, output)
	})

	t.Run("in-flight tool part produces invocation without result", func(t *testing.T) {
		msgs := chat.ToMessages(ctx, []chat.UIMessage{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				Parts: []chat.UIPart{
					chat.NewToolPart("generateFlashcard", types.NewToolCallID(), map[string]any{"type": "basic"}),
				},
			},
		})

		inv := msgs[0].ToolInvocations[0]
		gt.False(t, inv.Completed())
	})
}

func TestRoundTrip(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), func() time.Time { return now })

	original := []chat.Message{
		{
			ID:      types.NewMessageID(),
			Role:    types.RoleUser,
			Content: "make a flashcard about Go",
		},
		{
			ID:      types.NewMessageID(),
			Role:    types.RoleAssistant,
			Content: "sure, here it is",
			ToolInvocations: []chat.ToolInvocation{
				{
					ToolCallID: types.NewToolCallID(),
					ToolName:   "generateFlashcard",
					Args:       map[string]any{"type": "basic", "question": "Q", "answer": "A"},
					Result:     map[string]any{"type": "basic", "question": "Q", "answer": "A", "explanation": "E"},
				},
			},
		},
	}

	restored := chat.ToMessages(ctx, chat.ToUIMessages(original))

	gt.A(t, restored).Length(2)
	for i := range original {
		gt.Equal(t, restored[i].ID, original[i].ID)
		gt.Equal(t, restored[i].Role, original[i].Role)
		gt.Equal(t, restored[i].Content, original[i].Content)
		gt.Equal(t, restored[i].ToolInvocations, original[i].ToolInvocations)
		// Timestamps are not preserved across conversion.
		gt.Equal(t, restored[i].Timestamp, now)
	}
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
