package interfaces

import (
	"context"

	"github.com/lectern-dev/lectern/pkg/domain/model/auth"
)

// AuthUseCase validates cookie token pairs on incoming requests. The
// no-authn implementation hands out anonymous tokens instead.
type AuthUseCase interface {
	IssueToken(ctx context.Context, sub, email, name string) (*auth.Token, error)
	ValidateToken(ctx context.Context, tokenID auth.TokenID, secret auth.TokenSecret) (*auth.Token, error)
	Logout(ctx context.Context, tokenID auth.TokenID) error
	IsNoAuthn() bool
}
