package user

import (
	"context"

	"github.com/lectern-dev/lectern/pkg/domain/types"
)

type contextKey string

const userIDKey contextKey = "user_id"

// WithID sets the authenticated user ID in context
func WithID(ctx context.Context, userID types.UserID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// FromContext extracts the authenticated user ID from context. Returns the
// empty ID when the request is unauthenticated.
func FromContext(ctx context.Context) types.UserID {
	if userID, ok := ctx.Value(userIDKey).(types.UserID); ok {
		return userID
	}
	return types.EmptyUserID
}
