package session_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/domain/model/session"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestCreateInputValidate(t *testing.T) {
	valid := session.CreateInput{
		Title:   "Biology basics",
		Subject: "Biology",
	}

	t.Run("valid input passes", func(t *testing.T) {
		gt.NoError(t, valid.Validate())
	})

	t.Run("empty title fails", func(t *testing.T) {
		input := valid
		input.Title = ""
		err := input.Validate()
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, errs.TagValidation))
	})

	t.Run("title at limit passes", func(t *testing.T) {
		input := valid
		input.Title = strings.Repeat("a", 200)
		gt.NoError(t, input.Validate())
	})

	t.Run("title over limit fails", func(t *testing.T) {
		input := valid
		input.Title = strings.Repeat("a", 201)
		gt.Error(t, input.Validate())
	})

	t.Run("empty subject fails", func(t *testing.T) {
		input := valid
		input.Subject = ""
		gt.Error(t, input.Validate())
	})

	t.Run("subject over limit fails", func(t *testing.T) {
		input := valid
		input.Subject = strings.Repeat("a", 101)
		gt.Error(t, input.Validate())
	})

	t.Run("description is optional", func(t *testing.T) {
		input := valid
		input.Description = ""
		gt.NoError(t, input.Validate())
	})

	t.Run("description over limit fails", func(t *testing.T) {
		input := valid
		input.Description = strings.Repeat("a", 1001)
		gt.Error(t, input.Validate())
	})
}

func TestNewSession(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), func() time.Time { return now })

	sess := session.New(ctx, "user-1", session.CreateInput{
		Title:   "Go fundamentals",
		Subject: "Programming",
	})

	gt.NoError(t, sess.ID.Validate())
	gt.Equal(t, sess.Status, types.SessionStatusActive)
	gt.Equal(t, sess.UserID, types.UserID("user-1"))
	gt.A(t, sess.Messages).Length(0)
	gt.A(t, sess.Flashcards).Length(0)
	gt.Equal(t, sess.CreatedAt, now)
	gt.Equal(t, sess.UpdatedAt, now)
	gt.Equal(t, sess.LastAccessedAt, now)
}

func cardResult(q, a string) map[string]any {
	return map[string]any{
		"type":     "basic",
		"question": q,
		"answer":   a,
	}
}

func TestDeriveFlashcards(t *testing.T) {
	t.Run("one card per completed invocation, in order", func(t *testing.T) {
		call1 := types.NewToolCallID()
		call2 := types.NewToolCallID()
		messages := []chat.Message{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				ToolInvocations: []chat.ToolInvocation{
					{ToolCallID: call1, ToolName: "generateFlashcard", Result: cardResult("Q1", "A1")},
				},
			},
			{ID: types.NewMessageID(), Role: types.RoleUser, Content: "another please"},
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				ToolInvocations: []chat.ToolInvocation{
					{ToolCallID: call2, ToolName: "generateFlashcard", Result: cardResult("Q2", "A2")},
				},
			},
		}

		cards := session.DeriveFlashcards(messages)
		gt.A(t, cards).Length(2)
		gt.Equal(t, cards[0].ID, call1)
		gt.Equal(t, cards[0].Question, "Q1")
		gt.Equal(t, cards[1].ID, call2)
		gt.Equal(t, cards[1].Answer, "A2")
	})

	t.Run("in-flight and foreign invocations are skipped", func(t *testing.T) {
		messages := []chat.Message{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				ToolInvocations: []chat.ToolInvocation{
					{ToolCallID: types.NewToolCallID(), ToolName: "generateFlashcard"}, // no result
					{ToolCallID: types.NewToolCallID(), ToolName: "search", Result: map[string]any{"hits": 3}},
				},
			},
		}
		gt.A(t, session.DeriveFlashcards(messages)).Length(0)
	})

	t.Run("derivation is idempotent", func(t *testing.T) {
		messages := []chat.Message{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				ToolInvocations: []chat.ToolInvocation{
					{ToolCallID: types.NewToolCallID(), ToolName: "generateFlashcard", Result: cardResult("Q", "A")},
				},
			},
		}
		first := session.DeriveFlashcards(messages)
		second := session.DeriveFlashcards(messages)
		gt.Equal(t, first, second)
	})

	t.Run("answered is always false", func(t *testing.T) {
		messages := []chat.Message{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				ToolInvocations: []chat.ToolInvocation{
					{ToolCallID: types.NewToolCallID(), ToolName: "generateFlashcard", Result: cardResult("Q", "A")},
				},
			},
		}
		for _, card := range session.DeriveFlashcards(messages) {
			gt.False(t, card.Answered)
		}
	})

	t.Run("options survive JSON-style decoding", func(t *testing.T) {
		result := map[string]any{
			"type":     "multiple-choice",
			"question": "Q",
			"answer":   "B",
			"options":  []any{"A", "B", "C", "D"},
		}
		messages := []chat.Message{
			{
				ID:   types.NewMessageID(),
				Role: types.RoleAssistant,
				ToolInvocations: []chat.ToolInvocation{
					{ToolCallID: types.NewToolCallID(), ToolName: "generateFlashcard", Result: result},
				},
			},
		}
		cards := session.DeriveFlashcards(messages)
		gt.A(t, cards).Length(1)
		gt.Equal(t, cards[0].Options, []string{"A", "B", "C", "D"})
	})
}

func TestReplaceMessages(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), func() time.Time { return now })

	sess := session.New(ctx, "user-1", session.CreateInput{Title: "T", Subject: "S"})

	later := now.Add(time.Hour)
	ctx = clock.With(ctx, func() time.Time { return later })

	sess.ReplaceMessages(ctx, []chat.Message{
		{
			ID:   types.NewMessageID(),
			Role: types.RoleAssistant,
			ToolInvocations: []chat.ToolInvocation{
				{ToolCallID: types.NewToolCallID(), ToolName: "generateFlashcard", Result: cardResult("Q", "A")},
			},
		},
	})

	gt.A(t, sess.Messages).Length(1)
	gt.A(t, sess.Flashcards).Length(1)
	gt.Equal(t, sess.UpdatedAt, later)
	gt.Equal(t, sess.LastAccessedAt, later)
	gt.Equal(t, sess.CreatedAt, now)
	gt.Equal(t, sess.Counts(), session.Counts{Messages: 1, Flashcards: 1})
}
