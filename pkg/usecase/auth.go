package usecase

import (
	"context"
	"crypto/subtle"

	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/model/auth"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/m-mizutani/goerr/v2"
)

// AuthUseCase validates the token pair issued at login. The OAuth login
// flow itself lives in an external identity service; this side only stores
// and checks tokens.
type AuthUseCase struct {
	repo interfaces.Repository
}

var _ interfaces.AuthUseCase = &AuthUseCase{}

func NewAuthUseCase(repo interfaces.Repository) *AuthUseCase {
	return &AuthUseCase{repo: repo}
}

func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// IssueToken mints a fresh token pair for a verified identity and stores it
// for later validation.
func (uc *AuthUseCase) IssueToken(ctx context.Context, sub, email, name string) (*auth.Token, error) {
	if sub == "" {
		return nil, goerr.New("empty subject", goerr.T(errs.TagUnauthorized))
	}

	token := auth.NewToken(sub, email, name)
	if err := uc.repo.PutToken(ctx, token); err != nil {
		return nil, goerr.Wrap(err, "failed to store token")
	}

	return token, nil
}

func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	token, err := uc.repo.GetToken(ctx, tokenID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get token", goerr.T(errs.TagUnauthorized))
	}

	if subtle.ConstantTimeCompare([]byte(token.Secret), []byte(tokenSecret)) != 1 {
		return nil, goerr.New("token secret mismatch", goerr.T(errs.TagUnauthorized),
			goerr.V("token_id", tokenID))
	}

	if token.IsExpired() {
		return nil, goerr.New("token expired", goerr.T(errs.TagUnauthorized),
			goerr.V("token_id", tokenID))
	}

	return token, nil
}

func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	return uc.repo.DeleteToken(ctx, tokenID)
}
