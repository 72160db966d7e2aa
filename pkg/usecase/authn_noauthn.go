package usecase

import (
	"context"

	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/model/auth"
)

// NoAuthnUseCase always answers with an anonymous user. Development only.
type NoAuthnUseCase struct{}

var _ interfaces.AuthUseCase = &NoAuthnUseCase{}

func NewNoAuthnUseCase() *NoAuthnUseCase {
	return &NoAuthnUseCase{}
}

func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}

// IssueToken returns an anonymous token without persisting anything
func (uc *NoAuthnUseCase) IssueToken(ctx context.Context, sub, email, name string) (*auth.Token, error) {
	return auth.NewAnonymousToken(), nil
}

// ValidateToken always returns an anonymous user token
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	return auth.NewAnonymousToken(), nil
}

// Logout does nothing in no-auth mode
func (uc *NoAuthnUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	return nil
}
