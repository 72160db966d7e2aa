package usecase

import (
	"context"
	"sync"

	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/m-mizutani/gollem"
)

// transcriptRecorder accumulates the assistant's output of one generation
// turn (text blocks and tool invocations) and forwards each event to the
// notifier as it happens. The agent may call tools and emit text from its
// own goroutines, hence the lock.
type transcriptRecorder struct {
	mu       sync.Mutex
	notifier interfaces.ChatNotifier
	parts    []chat.UIPart
}

func newTranscriptRecorder(notifier interfaces.ChatNotifier) *transcriptRecorder {
	return &transcriptRecorder{notifier: notifier}
}

func (r *transcriptRecorder) recordText(ctx context.Context, text string) {
	if text == "" {
		return
	}

	r.mu.Lock()
	r.parts = append(r.parts, chat.NewTextPart(text))
	r.mu.Unlock()

	r.notifier.NotifyText(ctx, text)
}

func (r *transcriptRecorder) recordToolCall(ctx context.Context, callID types.ToolCallID, toolName string, input map[string]any) {
	r.notifier.NotifyToolCall(ctx, &interfaces.ToolCallEvent{
		ToolCallID: callID,
		ToolName:   toolName,
		Input:      input,
	})
}

func (r *transcriptRecorder) recordToolResult(ctx context.Context, callID types.ToolCallID, toolName string, input, output map[string]any) {
	r.mu.Lock()
	r.parts = append(r.parts, chat.NewCompletedToolPart(types.ToolName(toolName), callID, input, output))
	r.mu.Unlock()

	r.notifier.NotifyToolResult(ctx, &interfaces.ToolResultEvent{
		ToolCallID: callID,
		ToolName:   toolName,
		Output:     output,
	})
}

// assistantMessage builds the transient assistant message of this turn, or
// nil when the model produced nothing.
func (r *transcriptRecorder) assistantMessage() *chat.UIMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.parts) == 0 {
		return nil
	}

	return &chat.UIMessage{
		ID:    types.NewMessageID(),
		Role:  types.RoleAssistant,
		Parts: r.parts,
	}
}

// recordingToolSet wraps a gollem.ToolSet so every successful Run is
// captured in the transcript and streamed to the notifier. Tool call IDs
// are generated here: the transcript needs stable IDs and they double as
// flashcard IDs later.
type recordingToolSet struct {
	inner    gollem.ToolSet
	recorder *transcriptRecorder
}

var _ gollem.ToolSet = &recordingToolSet{}

func newRecordingToolSet(inner gollem.ToolSet, recorder *transcriptRecorder) *recordingToolSet {
	return &recordingToolSet{inner: inner, recorder: recorder}
}

func (x *recordingToolSet) Specs(ctx context.Context) ([]gollem.ToolSpec, error) {
	return x.inner.Specs(ctx)
}

func (x *recordingToolSet) Run(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	callID := types.NewToolCallID()
	x.recorder.recordToolCall(ctx, callID, name, args)

	result, err := x.inner.Run(ctx, name, args)
	if err != nil {
		return nil, err
	}

	x.recorder.recordToolResult(ctx, callID, name, args, result)
	return result, nil
}
