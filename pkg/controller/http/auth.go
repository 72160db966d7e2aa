package http

import (
	"fmt"
	"net/http"

	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/model/auth"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const (
	cookieTokenID     = "token_id"
	cookieTokenSecret = "token_secret"
)

func setTokenCookies(w http.ResponseWriter, r *http.Request, token *auth.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieTokenID,
		Value:    token.ID.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  token.ExpiresAt,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     cookieTokenSecret,
		Value:    token.Secret.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  token.ExpiresAt,
	})
}

func clearTokenCookies(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{cookieTokenID, cookieTokenSecret} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// authLoginHandler exchanges a verified IAP identity for a token pair. The
// service sits behind Google IAP in production; the proxy has already
// authenticated the user when this handler runs.
func authLoginHandler(authUC interfaces.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authUC.IsNoAuthn() {
			token, err := authUC.IssueToken(r.Context(), auth.AnonymousUserID, auth.AnonymousUserEmail, auth.AnonymousUserName)
			if err != nil {
				handleError(w, r, err)
				return
			}
			setTokenCookies(w, r, token)
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
			return
		}

		claims, err := auth.GetGoogleIAPJWTClaims(r.Context())
		if err != nil {
			writeError(w, r,
				goerr.New("no verified identity on request", goerr.T(errs.TagUnauthorized)),
				http.StatusUnauthorized)
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		name, _ := claims["name"].(string)
		if name == "" {
			name = email
		}

		token, err := authUC.IssueToken(r.Context(), sub, email, name)
		if err != nil {
			handleError(w, r, err)
			return
		}

		setTokenCookies(w, r, token)
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
	}
}

// authLogoutHandler revokes the token and clears the cookies.
func authLogoutHandler(authUC interfaces.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tokenIDCookie, err := r.Cookie(cookieTokenID); err == nil {
			if err := authUC.Logout(r.Context(), auth.TokenID(tokenIDCookie.Value)); err != nil {
				logging.From(r.Context()).Error("Failed to logout, but ignored", logging.ErrAttr(err))
			}
		}

		clearTokenCookies(w, r)
		respondSuccess(w, r, http.StatusOK, nil)
	}
}

type userInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// authMeHandler returns the current user information.
func authMeHandler(authUC interfaces.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authUC.IsNoAuthn() {
			respondSuccess(w, r, http.StatusOK, userInfo{
				Sub:   auth.AnonymousUserID,
				Email: auth.AnonymousUserEmail,
				Name:  auth.AnonymousUserName,
			})
			return
		}

		tokenIDCookie, err := r.Cookie(cookieTokenID)
		if err != nil {
			writeError(w, r, fmt.Errorf("not authenticated"), http.StatusUnauthorized)
			return
		}
		tokenSecretCookie, err := r.Cookie(cookieTokenSecret)
		if err != nil {
			writeError(w, r, fmt.Errorf("not authenticated"), http.StatusUnauthorized)
			return
		}

		token, err := authUC.ValidateToken(r.Context(),
			auth.TokenID(tokenIDCookie.Value),
			auth.TokenSecret(tokenSecretCookie.Value))
		if err != nil {
			writeError(w, r, fmt.Errorf("invalid token"), http.StatusUnauthorized)
			return
		}

		respondSuccess(w, r, http.StatusOK, userInfo{
			Sub:   token.Sub,
			Email: token.Email,
			Name:  token.Name,
		})
	}
}
