package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/domain/model/session"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/utils/clock"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (r *Firestore) PutSession(ctx context.Context, sess *session.Session) error {
	_, err := r.db.Collection(collectionSessions).Doc(sess.ID.String()).Set(ctx, sess)
	if err != nil {
		return r.eb.Wrap(err, "failed to put session",
			goerr.V("session_id", sess.ID),
			goerr.T(errs.TagDatabase))
	}
	return nil
}

// GetSession returns (nil, nil) both when the document does not exist and
// when it belongs to another user, so a caller cannot distinguish the two.
// A successful read bumps last_accessed_at.
func (r *Firestore) GetSession(ctx context.Context, id types.SessionID, userID types.UserID) (*session.Session, error) {
	docRef := r.db.Collection(collectionSessions).Doc(id.String())

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, r.eb.Wrap(err, "failed to get session",
			goerr.V("session_id", id),
			goerr.T(errs.TagDatabase))
	}

	var sess session.Session
	if err := doc.DataTo(&sess); err != nil {
		return nil, goerr.Wrap(err, "failed to convert data to session",
			goerr.V("session_id", id),
			goerr.T(errs.TagInternal))
	}

	if sess.UserID != userID {
		return nil, nil
	}

	now := clock.Now(ctx)
	if _, err := docRef.Update(ctx, []firestore.Update{
		{Path: "last_accessed_at", Value: now},
	}); err != nil {
		return nil, r.eb.Wrap(err, "failed to touch session",
			goerr.V("session_id", id),
			goerr.T(errs.TagDatabase))
	}
	sess.LastAccessedAt = now

	return &sess, nil
}

func (r *Firestore) ListSessions(ctx context.Context, userID types.UserID) ([]*session.Session, error) {
	// Needs the composite index (user_id, last_accessed_at desc).
	query := r.db.Collection(collectionSessions).
		Where("user_id", "==", userID.String()).
		OrderBy("last_accessed_at", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var sessions []*session.Session
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, r.eb.Wrap(err, "failed to query sessions",
				goerr.V("user_id", userID),
				goerr.T(errs.TagDatabase))
		}

		var sess session.Session
		if err := doc.DataTo(&sess); err != nil {
			return nil, goerr.Wrap(err, "failed to convert data to session",
				goerr.V("user_id", userID),
				goerr.T(errs.TagInternal))
		}
		sessions = append(sessions, &sess)
	}

	return sessions, nil
}

func (r *Firestore) UpdateSessionMessages(ctx context.Context, id types.SessionID, userID types.UserID, messages []chat.Message, flashcards []session.Flashcard) error {
	docRef := r.db.Collection(collectionSessions).Doc(id.String())
	now := clock.Now(ctx)

	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.New("session not found or access denied",
					goerr.V("session_id", id),
					goerr.T(errs.TagNotFound))
			}
			return goerr.Wrap(err, "failed to get session", goerr.T(errs.TagDatabase))
		}

		var sess session.Session
		if err := doc.DataTo(&sess); err != nil {
			return goerr.Wrap(err, "failed to convert data to session", goerr.T(errs.TagInternal))
		}
		if sess.UserID != userID {
			return goerr.New("session not found or access denied",
				goerr.V("session_id", id),
				goerr.T(errs.TagNotFound))
		}

		return tx.Update(docRef, []firestore.Update{
			{Path: "messages", Value: messages},
			{Path: "flashcards", Value: flashcards},
			{Path: "updated_at", Value: now},
			{Path: "last_accessed_at", Value: now},
		})
	})
	if err != nil {
		if goerr.HasTag(err, errs.TagNotFound) {
			return err
		}
		return r.eb.Wrap(err, "failed to update session messages",
			goerr.V("session_id", id),
			goerr.T(errs.TagDatabase))
	}
	return nil
}

func (r *Firestore) DeleteSession(ctx context.Context, id types.SessionID, userID types.UserID) error {
	docRef := r.db.Collection(collectionSessions).Doc(id.String())

	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.New("session not found or access denied",
					goerr.V("session_id", id),
					goerr.T(errs.TagNotFound))
			}
			return goerr.Wrap(err, "failed to get session", goerr.T(errs.TagDatabase))
		}

		var sess session.Session
		if err := doc.DataTo(&sess); err != nil {
			return goerr.Wrap(err, "failed to convert data to session", goerr.T(errs.TagInternal))
		}
		if sess.UserID != userID {
			return goerr.New("session not found or access denied",
				goerr.V("session_id", id),
				goerr.T(errs.TagNotFound))
		}

		return tx.Delete(docRef)
	})
	if err != nil {
		if goerr.HasTag(err, errs.TagNotFound) {
			return err
		}
		return r.eb.Wrap(err, "failed to delete session",
			goerr.V("session_id", id),
			goerr.T(errs.TagDatabase))
	}
	return nil
}
