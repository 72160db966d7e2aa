package types

import "github.com/m-mizutani/goerr/v2"

// UserID is the stable subject identifier of an authenticated user. It comes
// from the identity provider (the token's sub claim), not from this service.
type UserID string

const EmptyUserID UserID = ""

func (x UserID) String() string {
	return string(x)
}

func (x UserID) Validate() error {
	if x == EmptyUserID {
		return goerr.New("empty user ID")
	}
	return nil
}
