package interfaces

import (
	"context"

	"github.com/lectern-dev/lectern/pkg/domain/model/auth"
	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/model/session"
	"github.com/lectern-dev/lectern/pkg/domain/types"
)

// Repository is the persistence boundary. All session reads and writes are
// scoped by owner: a session that exists but belongs to another user behaves
// exactly like a missing one.
type Repository interface {
	// PutSession stores a new or fully updated session document.
	PutSession(ctx context.Context, sess *session.Session) error

	// GetSession fetches an owner-scoped session and bumps its
	// last_accessed_at as a side effect. Returns (nil, nil) when the
	// session does not exist or belongs to another user.
	GetSession(ctx context.Context, id types.SessionID, userID types.UserID) (*session.Session, error)

	// ListSessions returns the user's sessions ordered by last_accessed_at
	// descending.
	ListSessions(ctx context.Context, userID types.UserID) ([]*session.Session, error)

	// UpdateSessionMessages replaces the transcript and the derived
	// flashcards of an owner-scoped session and advances updated_at and
	// last_accessed_at. Fails when no matching document exists.
	UpdateSessionMessages(ctx context.Context, id types.SessionID, userID types.UserID, messages []chat.Message, flashcards []session.Flashcard) error

	// DeleteSession removes an owner-scoped session. Fails when no matching
	// document exists.
	DeleteSession(ctx context.Context, id types.SessionID, userID types.UserID) error

	PutToken(ctx context.Context, token *auth.Token) error
	GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error)
	DeleteToken(ctx context.Context, tokenID auth.TokenID) error
}
