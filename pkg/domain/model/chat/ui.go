package chat

import (
	"strings"

	"github.com/lectern-dev/lectern/pkg/domain/types"
)

// UIMessage is the transient part-based message format exchanged with the
// browser over the chat endpoint (AI SDK v5 UIMessage shape).
type UIMessage struct {
	ID    types.MessageID   `json:"id"`
	Role  types.MessageRole `json:"role"`
	Parts []UIPart          `json:"parts"`
}

// UIPartState is the lifecycle state of a tool part.
type UIPartState string

const (
	UIPartStateInputAvailable  UIPartState = "input-available"
	UIPartStateOutputAvailable UIPartState = "output-available"
)

const (
	UIPartTypeText = "text"

	// Tool parts carry the tool name in the type tag, e.g.
	// "tool-generateFlashcard".
	toolPartPrefix = "tool-"
)

// UIPart is either a text part or a tool part, discriminated by Type.
type UIPart struct {
	Type       string           `json:"type"`
	Text       string           `json:"text,omitempty"`
	ToolCallID types.ToolCallID `json:"toolCallId,omitempty"`
	State      UIPartState      `json:"state,omitempty"`
	Input      map[string]any   `json:"input,omitempty"`
	Output     map[string]any   `json:"output,omitempty"`
}

func NewTextPart(text string) UIPart {
	return UIPart{Type: UIPartTypeText, Text: text}
}

func NewToolPart(toolName types.ToolName, callID types.ToolCallID, input map[string]any) UIPart {
	return UIPart{
		Type:       toolPartPrefix + toolName.String(),
		ToolCallID: callID,
		State:      UIPartStateInputAvailable,
		Input:      input,
	}
}

func NewCompletedToolPart(toolName types.ToolName, callID types.ToolCallID, input, output map[string]any) UIPart {
	return UIPart{
		Type:       toolPartPrefix + toolName.String(),
		ToolCallID: callID,
		State:      UIPartStateOutputAvailable,
		Input:      input,
		Output:     output,
	}
}

func (x UIPart) IsText() bool {
	return x.Type == UIPartTypeText
}

func (x UIPart) IsTool() bool {
	return strings.HasPrefix(x.Type, toolPartPrefix)
}

// ToolName returns the tool name encoded in the type tag of a tool part.
// Tags for tools this service never shipped come back as an unknown
// ToolName; they are carried through conversion untouched.
func (x UIPart) ToolName() types.ToolName {
	return types.ToolName(strings.TrimPrefix(x.Type, toolPartPrefix))
}

// Completed reports whether a tool part carries its output.
func (x UIPart) Completed() bool {
	return x.State == UIPartStateOutputAvailable && x.Output != nil
}
