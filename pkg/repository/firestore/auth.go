package firestore

import (
	"context"

	"github.com/lectern-dev/lectern/pkg/domain/model/auth"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (r *Firestore) PutToken(ctx context.Context, token *auth.Token) error {
	doc := r.db.Collection(collectionTokens).Doc(token.ID.String())
	if _, err := doc.Set(ctx, token); err != nil {
		return goerr.Wrap(err, "failed to put token", goerr.V("token_id", token.ID))
	}
	return nil
}

func (r *Firestore) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	doc, err := r.db.Collection(collectionTokens).Doc(tokenID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.New("token not found", goerr.V("token_id", tokenID))
		}
		return nil, goerr.Wrap(err, "failed to get token", goerr.V("token_id", tokenID))
	}

	var token auth.Token
	if err := doc.DataTo(&token); err != nil {
		return nil, goerr.Wrap(err, "failed to convert data to token", goerr.V("token_id", tokenID))
	}

	return &token, nil
}

func (r *Firestore) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	doc := r.db.Collection(collectionTokens).Doc(tokenID.String())
	if _, err := doc.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete token", goerr.V("token_id", tokenID))
	}
	return nil
}
