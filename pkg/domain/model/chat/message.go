package chat

import (
	"time"

	"github.com/lectern-dev/lectern/pkg/domain/types"
)

// Message is the persisted form of a chat message as stored inside a
// learning session document.
type Message struct {
	ID              types.MessageID   `json:"id" firestore:"id"`
	Role            types.MessageRole `json:"role" firestore:"role"`
	Content         string            `json:"content" firestore:"content"`
	ToolInvocations []ToolInvocation  `json:"toolInvocations,omitempty" firestore:"tool_invocations,omitempty"`
	Timestamp       time.Time         `json:"timestamp" firestore:"timestamp"`
}

// ToolInvocation records one tool call made by the model while producing a
// message. Result is nil while the call is still in flight.
type ToolInvocation struct {
	ToolCallID types.ToolCallID `json:"toolCallId" firestore:"tool_call_id"`
	ToolName   types.ToolName   `json:"toolName" firestore:"tool_name"`
	Args       map[string]any   `json:"args" firestore:"args"`
	Result     map[string]any   `json:"result,omitempty" firestore:"result,omitempty"`
}

// Completed reports whether the invocation has produced a result. An empty
// result map still counts as completed; only a nil map means in flight.
func (x ToolInvocation) Completed() bool {
	return x.Result != nil
}
