package interfaces

import (
	"context"

	"github.com/lectern-dev/lectern/pkg/domain/model/session"
	"github.com/lectern-dev/lectern/pkg/domain/types"
)

// SessionObserver is notified after a session's transcript changes. The
// websocket hub implements it to push count badges to subscribed clients.
type SessionObserver interface {
	SessionUpdated(ctx context.Context, id types.SessionID, counts session.Counts)
}
