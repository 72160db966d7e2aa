package usecase

import (
	"context"

	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/domain/model/session"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/utils/user"
	"github.com/m-mizutani/goerr/v2"
)

// CreateSession validates the metadata and stores a fresh active session
// owned by the authenticated user.
func (x *UseCases) CreateSession(ctx context.Context, input session.CreateInput) (*session.Session, error) {
	userID := user.FromContext(ctx)
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "no authenticated user", goerr.T(errs.TagUnauthorized))
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	sess := session.New(ctx, userID, input)
	if err := x.repository.PutSession(ctx, sess); err != nil {
		return nil, goerr.Wrap(err, "failed to store session")
	}

	return sess, nil
}

// GetSession fetches an owner-scoped session. The repository already bumps
// last_accessed_at on a successful read. Missing and foreign sessions are
// indistinguishable to the caller.
func (x *UseCases) GetSession(ctx context.Context, id types.SessionID) (*session.Session, error) {
	userID := user.FromContext(ctx)
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "no authenticated user", goerr.T(errs.TagUnauthorized))
	}
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid session ID", goerr.T(errs.TagValidation))
	}

	sess, err := x.repository.GetSession(ctx, id, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session")
	}
	if sess == nil {
		return nil, goerr.New("session not found or access denied",
			goerr.T(errs.TagNotFound), goerr.V("session_id", id))
	}

	return sess, nil
}

func (x *UseCases) ListSessions(ctx context.Context) ([]*session.Session, error) {
	userID := user.FromContext(ctx)
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "no authenticated user", goerr.T(errs.TagUnauthorized))
	}

	sessions, err := x.repository.ListSessions(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []*session.Session{}
	}
	return sessions, nil
}

// UpdateSession applies a partial metadata update. This is how a session
// gets marked completed; transcript writes never change the status.
func (x *UseCases) UpdateSession(ctx context.Context, id types.SessionID, input session.UpdateInput) (*session.Session, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	sess, err := x.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.ApplyUpdate(ctx, input)
	if err := x.repository.PutSession(ctx, sess); err != nil {
		return nil, goerr.Wrap(err, "failed to store session")
	}

	return sess, nil
}

// UpdateSessionMessages replaces the transcript, rederives the flashcards
// and notifies the session observer with fresh counts. Concurrent updates
// are last-write-wins.
func (x *UseCases) UpdateSessionMessages(ctx context.Context, id types.SessionID, messages []chat.Message) error {
	userID := user.FromContext(ctx)
	if err := userID.Validate(); err != nil {
		return goerr.Wrap(err, "no authenticated user", goerr.T(errs.TagUnauthorized))
	}
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid session ID", goerr.T(errs.TagValidation))
	}

	flashcards := session.DeriveFlashcards(messages)

	if err := x.repository.UpdateSessionMessages(ctx, id, userID, messages, flashcards); err != nil {
		return goerr.Wrap(err, "failed to update session messages")
	}

	if x.observer != nil {
		x.observer.SessionUpdated(ctx, id, session.Counts{
			Messages:   len(messages),
			Flashcards: len(flashcards),
		})
	}

	return nil
}

func (x *UseCases) DeleteSession(ctx context.Context, id types.SessionID) error {
	userID := user.FromContext(ctx)
	if err := userID.Validate(); err != nil {
		return goerr.Wrap(err, "no authenticated user", goerr.T(errs.TagUnauthorized))
	}
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid session ID", goerr.T(errs.TagValidation))
	}

	if err := x.repository.DeleteSession(ctx, id, userID); err != nil {
		return goerr.Wrap(err, "failed to delete session")
	}

	return nil
}
