package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// MessageID identifies a single chat message within a session.
type MessageID string

func NewMessageID() MessageID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return MessageID(id.String())
}

func (x MessageID) String() string {
	return string(x)
}

// MessageRole is the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

func (x MessageRole) String() string {
	return string(x)
}

func (x MessageRole) Validate() error {
	switch x {
	case RoleUser, RoleAssistant:
		return nil
	}
	return goerr.New("invalid message role", goerr.V("role", x))
}

// ToolCallID identifies one tool invocation issued by the model. It doubles
// as the ID of the flashcard derived from that invocation.
type ToolCallID string

func NewToolCallID() ToolCallID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return ToolCallID(id.String())
}

func (x ToolCallID) String() string {
	return string(x)
}

// ToolName is the set of tools the tutor model may invoke. Any other value
// is an unknown tool: persisted records keep it verbatim, but nothing is
// derived from it.
type ToolName string

const ToolNameGenerateFlashcard ToolName = "generateFlashcard"

func (x ToolName) String() string {
	return string(x)
}

// Known reports whether the name belongs to a tool this service ships.
func (x ToolName) Known() bool {
	return x == ToolNameGenerateFlashcard
}

// CardType is the kind of flashcard the tool produces.
type CardType string

const (
	CardTypeBasic          CardType = "basic"
	CardTypeMultipleChoice CardType = "multiple-choice"
)

func (x CardType) String() string {
	return string(x)
}

func (x CardType) Validate() error {
	switch x {
	case CardTypeBasic, CardTypeMultipleChoice:
		return nil
	}
	return goerr.New("invalid card type", goerr.V("type", x))
}
