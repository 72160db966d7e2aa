package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// SessionID identifies a learning session document.
type SessionID string

const EmptySessionID SessionID = ""

func NewSessionID() SessionID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return SessionID(id.String())
}

func (x SessionID) String() string {
	return string(x)
}

func (x SessionID) Validate() error {
	if x == EmptySessionID {
		return goerr.New("empty session ID")
	}
	if _, err := uuid.Parse(string(x)); err != nil {
		return goerr.Wrap(err, "invalid session ID format", goerr.V("id", x))
	}
	return nil
}

// SessionStatus represents the lifecycle state of a learning session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

func (x SessionStatus) String() string {
	return string(x)
}

func (x SessionStatus) Validate() error {
	switch x {
	case SessionStatusActive, SessionStatusCompleted:
		return nil
	}
	return goerr.New("invalid session status", goerr.V("status", x))
}
