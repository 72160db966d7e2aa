package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/tool/flashcard"
	"github.com/m-mizutani/gt"
)

type captureNotifier struct {
	mu          sync.Mutex
	texts       []string
	toolCalls   []*interfaces.ToolCallEvent
	toolResults []*interfaces.ToolResultEvent
}

func (x *captureNotifier) NotifyText(_ context.Context, text string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.texts = append(x.texts, text)
}

func (x *captureNotifier) NotifyToolCall(_ context.Context, ev *interfaces.ToolCallEvent) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.toolCalls = append(x.toolCalls, ev)
}

func (x *captureNotifier) NotifyToolResult(_ context.Context, ev *interfaces.ToolResultEvent) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.toolResults = append(x.toolResults, ev)
}

func TestRecordingToolSet(t *testing.T) {
	ctx := context.Background()

	t.Run("successful run is streamed and captured", func(t *testing.T) {
		notifier := &captureNotifier{}
		recorder := newTranscriptRecorder(notifier)
		toolset := newRecordingToolSet(flashcard.New(), recorder)

		args := map[string]any{"type": "basic", "question": "Q", "answer": "A"}
		result, err := toolset.Run(ctx, "generateFlashcard", args)
		gt.NoError(t, err)
		gt.Equal(t, result["question"], "Q")

		gt.A(t, notifier.toolCalls).Length(1)
		gt.Equal(t, notifier.toolCalls[0].ToolName, "generateFlashcard")
		gt.A(t, notifier.toolResults).Length(1)
		gt.Equal(t, notifier.toolResults[0].ToolCallID, notifier.toolCalls[0].ToolCallID)

		msg := recorder.assistantMessage()
		gt.V(t, msg).NotNil()
		gt.A(t, msg.Parts).Length(1)
		gt.True(t, msg.Parts[0].IsTool())
		gt.Equal(t, msg.Parts[0].State, "output-available")
	})

	t.Run("failed run emits call but no result", func(t *testing.T) {
		notifier := &captureNotifier{}
		recorder := newTranscriptRecorder(notifier)
		toolset := newRecordingToolSet(flashcard.New(), recorder)

		_, err := toolset.Run(ctx, "generateFlashcard", map[string]any{
			"type":     "multiple-choice",
			"question": "Q",
			"answer":   "A",
			// options missing
		})
		gt.Error(t, err)

		gt.A(t, notifier.toolCalls).Length(1)
		gt.A(t, notifier.toolResults).Length(0)
		gt.V(t, recorder.assistantMessage()).Nil()
	})

	t.Run("text blocks interleave with tool parts", func(t *testing.T) {
		notifier := &captureNotifier{}
		recorder := newTranscriptRecorder(notifier)
		toolset := newRecordingToolSet(flashcard.New(), recorder)

		recorder.recordText(ctx, "making a card")
		_, err := toolset.Run(ctx, "generateFlashcard", map[string]any{
			"type": "basic", "question": "Q", "answer": "A",
		})
		gt.NoError(t, err)

		msg := recorder.assistantMessage()
		gt.V(t, msg).NotNil()
		gt.Equal(t, msg.Role, types.RoleAssistant)
		gt.A(t, msg.Parts).Length(2)
		gt.True(t, msg.Parts[0].IsText())
		gt.True(t, msg.Parts[1].IsTool())
	})
}
