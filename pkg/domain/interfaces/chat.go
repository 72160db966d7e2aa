package interfaces

import (
	"context"

	"github.com/lectern-dev/lectern/pkg/domain/types"
)

// ToolCallEvent is emitted when the model issues a tool call, before the
// tool runs.
type ToolCallEvent struct {
	ToolCallID types.ToolCallID `json:"toolCallId"`
	ToolName   string           `json:"toolName"`
	Input      map[string]any   `json:"input"`
}

// ToolResultEvent is emitted after a tool call completes successfully.
type ToolResultEvent struct {
	ToolCallID types.ToolCallID `json:"toolCallId"`
	ToolName   string           `json:"toolName"`
	Output     map[string]any   `json:"output"`
}

// ChatNotifier receives generation events while a chat turn is running.
// The HTTP controller implements it to stream SSE events to the browser;
// the CLI chat command implements it for terminal output. Implementations
// must tolerate being called from the generation goroutine.
type ChatNotifier interface {
	NotifyText(ctx context.Context, text string)
	NotifyToolCall(ctx context.Context, ev *ToolCallEvent)
	NotifyToolResult(ctx context.Context, ev *ToolResultEvent)
}
