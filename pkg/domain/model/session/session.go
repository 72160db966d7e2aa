package session

import (
	"context"
	"time"

	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
)

const (
	maxTitleLength       = 200
	maxSubjectLength     = 100
	maxDescriptionLength = 1000
)

// Session is a learning session document: the chat transcript plus the
// flashcards derived from it, owned by a single user.
type Session struct {
	ID             types.SessionID     `json:"id" firestore:"id"`
	Title          string              `json:"title" firestore:"title"`
	Subject        string              `json:"subject" firestore:"subject"`
	Description    string              `json:"description" firestore:"description"`
	UserID         types.UserID        `json:"userId" firestore:"user_id"`
	Messages       []chat.Message      `json:"messages" firestore:"messages"`
	Flashcards     []Flashcard         `json:"flashcards" firestore:"flashcards"`
	Status         types.SessionStatus `json:"status" firestore:"status"`
	CreatedAt      time.Time           `json:"createdAt" firestore:"created_at"`
	UpdatedAt      time.Time           `json:"updatedAt" firestore:"updated_at"`
	LastAccessedAt time.Time           `json:"lastAccessedAt" firestore:"last_accessed_at"`
}

// CreateInput carries the user-supplied metadata of a new session.
type CreateInput struct {
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

func (x CreateInput) Validate() error {
	if x.Title == "" {
		return goerr.New("title is required", goerr.T(errs.TagValidation))
	}
	if len(x.Title) > maxTitleLength {
		return goerr.New("title too long", goerr.T(errs.TagValidation),
			goerr.V("max", maxTitleLength), goerr.V("length", len(x.Title)))
	}
	if x.Subject == "" {
		return goerr.New("subject is required", goerr.T(errs.TagValidation))
	}
	if len(x.Subject) > maxSubjectLength {
		return goerr.New("subject too long", goerr.T(errs.TagValidation),
			goerr.V("max", maxSubjectLength), goerr.V("length", len(x.Subject)))
	}
	if len(x.Description) > maxDescriptionLength {
		return goerr.New("description too long", goerr.T(errs.TagValidation),
			goerr.V("max", maxDescriptionLength), goerr.V("length", len(x.Description)))
	}
	return nil
}

// UpdateInput carries a partial metadata update. Nil fields are left as-is.
type UpdateInput struct {
	Title       *string              `json:"title,omitempty"`
	Subject     *string              `json:"subject,omitempty"`
	Description *string              `json:"description,omitempty"`
	Status      *types.SessionStatus `json:"status,omitempty"`
}

func (x UpdateInput) Validate() error {
	if x.Title != nil {
		if *x.Title == "" {
			return goerr.New("title is required", goerr.T(errs.TagValidation))
		}
		if len(*x.Title) > maxTitleLength {
			return goerr.New("title too long", goerr.T(errs.TagValidation),
				goerr.V("max", maxTitleLength), goerr.V("length", len(*x.Title)))
		}
	}
	if x.Subject != nil {
		if *x.Subject == "" {
			return goerr.New("subject is required", goerr.T(errs.TagValidation))
		}
		if len(*x.Subject) > maxSubjectLength {
			return goerr.New("subject too long", goerr.T(errs.TagValidation),
				goerr.V("max", maxSubjectLength), goerr.V("length", len(*x.Subject)))
		}
	}
	if x.Description != nil && len(*x.Description) > maxDescriptionLength {
		return goerr.New("description too long", goerr.T(errs.TagValidation),
			goerr.V("max", maxDescriptionLength), goerr.V("length", len(*x.Description)))
	}
	if x.Status != nil {
		if err := x.Status.Validate(); err != nil {
			return goerr.Wrap(err, "invalid status", goerr.T(errs.TagValidation))
		}
	}
	return nil
}

// ApplyUpdate writes the non-nil fields and advances UpdatedAt.
func (x *Session) ApplyUpdate(ctx context.Context, input UpdateInput) {
	if input.Title != nil {
		x.Title = *input.Title
	}
	if input.Subject != nil {
		x.Subject = *input.Subject
	}
	if input.Description != nil {
		x.Description = *input.Description
	}
	if input.Status != nil {
		x.Status = *input.Status
	}
	x.UpdatedAt = clock.Now(ctx)
}

// New creates an active session with empty transcript and flashcards. The
// caller validates input beforehand.
func New(ctx context.Context, userID types.UserID, input CreateInput) *Session {
	now := clock.Now(ctx)
	return &Session{
		ID:             types.NewSessionID(),
		Title:          input.Title,
		Subject:        input.Subject,
		Description:    input.Description,
		UserID:         userID,
		Messages:       []chat.Message{},
		Flashcards:     []Flashcard{},
		Status:         types.SessionStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastAccessedAt: now,
	}
}

func (x *Session) Validate() error {
	if err := x.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid session ID")
	}
	if err := x.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}
	if err := x.Status.Validate(); err != nil {
		return goerr.Wrap(err, "invalid status")
	}
	return nil
}

// ReplaceMessages swaps the transcript and rederives the flashcards so the
// two never drift apart. UpdatedAt and LastAccessedAt advance together.
func (x *Session) ReplaceMessages(ctx context.Context, messages []chat.Message) {
	now := clock.Now(ctx)
	x.Messages = messages
	x.Flashcards = DeriveFlashcards(messages)
	x.UpdatedAt = now
	x.LastAccessedAt = now
}

// Counts returns the message and flashcard counts used for badges.
func (x *Session) Counts() Counts {
	return Counts{
		Messages:   len(x.Messages),
		Flashcards: len(x.Flashcards),
	}
}

type Counts struct {
	Messages   int `json:"message_count"`
	Flashcards int `json:"flashcard_count"`
}
