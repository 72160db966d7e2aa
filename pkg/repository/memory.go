package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/model/auth"
	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/domain/model/session"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
)

// Memory is the in-memory Repository used by tests and local development.
type Memory struct {
	mu sync.RWMutex

	sessions map[types.SessionID]*session.Session
	tokens   map[auth.TokenID]*auth.Token

	eb *goerr.Builder
}

var _ interfaces.Repository = &Memory{}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[types.SessionID]*session.Session),
		tokens:   make(map[auth.TokenID]*auth.Token),
		eb:       goerr.NewBuilder(goerr.TV(errs.RepositoryKey, "memory")),
	}
}

func (r *Memory) PutSession(ctx context.Context, sess *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *sess
	r.sessions[sess.ID] = &copied
	return nil
}

func (r *Memory) GetSession(ctx context.Context, id types.SessionID, userID types.UserID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok || sess.UserID != userID {
		return nil, nil
	}

	sess.LastAccessedAt = clock.Now(ctx)

	copied := *sess
	return &copied, nil
}

func (r *Memory) ListSessions(ctx context.Context, userID types.UserID) ([]*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []*session.Session
	for _, sess := range r.sessions {
		if sess.UserID != userID {
			continue
		}
		copied := *sess
		sessions = append(sessions, &copied)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastAccessedAt.After(sessions[j].LastAccessedAt)
	})

	return sessions, nil
}

func (r *Memory) UpdateSessionMessages(ctx context.Context, id types.SessionID, userID types.UserID, messages []chat.Message, flashcards []session.Flashcard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok || sess.UserID != userID {
		return r.eb.New("session not found or access denied",
			goerr.V("session_id", id),
			goerr.T(errs.TagNotFound))
	}

	now := clock.Now(ctx)
	sess.Messages = messages
	sess.Flashcards = flashcards
	sess.UpdatedAt = now
	sess.LastAccessedAt = now
	return nil
}

func (r *Memory) DeleteSession(ctx context.Context, id types.SessionID, userID types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok || sess.UserID != userID {
		return r.eb.New("session not found or access denied",
			goerr.V("session_id", id),
			goerr.T(errs.TagNotFound))
	}

	delete(r.sessions, id)
	return nil
}

func (r *Memory) PutToken(ctx context.Context, token *auth.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *token
	r.tokens[token.ID] = &copied
	return nil
}

func (r *Memory) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[tokenID]
	if !ok {
		return nil, r.eb.New("token not found", goerr.V("token_id", tokenID))
	}

	copied := *token
	return &copied, nil
}

func (r *Memory) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, tokenID)
	return nil
}
