package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/model/auth"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/utils/logging"
	"github.com/lectern-dev/lectern/pkg/utils/user"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/idtoken"
)

const iapJWKURL = "https://www.gstatic.com/iap/verify/public_key-jwk"

// withAuthHTTPRequest captures the raw request for the authorization policy.
func withAuthHTTPRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		// Restore the body for next handlers
		r.Body = io.NopCloser(bytes.NewBuffer(body))

		copiedHeader := make(map[string][]string)
		for k, v := range r.Header {
			copiedHeader[k] = v[:]
		}

		authReq := &auth.HTTPRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Body:   string(body),
			Header: copiedHeader,
		}

		ctx := auth.WithHTTPRequest(r.Context(), authReq)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateGoogleIAPToken validates Google IAP JWT from x-goog-iap-jwt-assertion
// header and injects the verified claims into request context if valid.
// Validation failures are logged and the request continues unauthenticated.
func validateGoogleIAPToken(next http.Handler) http.Handler {
	return validateGoogleIAPTokenWithJWKURL(next, iapJWKURL)
}

func validateGoogleIAPTokenWithJWKURL(next http.Handler, jwkURL string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		iapJWTHeader := r.Header.Get("x-goog-iap-jwt-assertion")
		if iapJWTHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		logger := logging.From(r.Context())

		keySet, err := jwk.Fetch(r.Context(), jwkURL)
		if err != nil {
			logger.Warn("failed to fetch IAP public keys, continuing without validation", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		token, err := jwt.Parse([]byte(iapJWTHeader), jwt.WithKeySet(keySet), jwt.WithValidate(true))
		if err != nil {
			logger.Warn("invalid IAP JWT token, continuing without validation", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if token.Issuer() != "https://cloud.google.com/iap" {
			logger.Warn("invalid JWT issuer, continuing without validation", "issuer", token.Issuer())
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now()
		if token.Expiration().Before(now) {
			logger.Warn("JWT token expired, continuing without validation", "expiration", token.Expiration())
			next.ServeHTTP(w, r)
			return
		}
		if token.IssuedAt().After(now) {
			logger.Warn("JWT token used before issued, continuing without validation", "issued_at", token.IssuedAt())
			next.ServeHTTP(w, r)
			return
		}

		if len(token.Audience()) == 0 {
			logger.Warn("JWT missing audience, continuing without validation")
			next.ServeHTTP(w, r)
			return
		}

		claimsMap := make(map[string]interface{})
		for iter := token.Iterate(r.Context()); iter.Next(r.Context()); {
			pair := iter.Pair()
			claimsMap[pair.Key.(string)] = pair.Value
		}

		ctx := auth.WithGoogleIAPJWTClaims(r.Context(), claimsMap)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateGoogleIDToken validates a Google ID token in the Authorization
// header and injects the claims into request context if valid.
func validateGoogleIDToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		validator, err := idtoken.NewValidator(r.Context())
		if err != nil {
			http.Error(w, "Failed to create token validator", http.StatusInternalServerError)
			return
		}

		payload, err := validator.Validate(r.Context(), parts[1], "")
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := auth.WithGoogleIDTokenClaims(r.Context(), payload.Claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func panicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				panicErr := goerr.New("panic recovered",
					goerr.V("panic", fmt.Sprintf("%v", err)),
					goerr.V("stack", string(debug.Stack())),
					goerr.V("method", r.Method),
					goerr.V("path", r.URL.Path),
				)

				handleError(w, r, panicErr)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware resolves the token cookies into an authenticated user.
func authMiddleware(authUC interfaces.AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// For no-authn mode, always use the anonymous user
			if authUC.IsNoAuthn() {
				token, err := authUC.ValidateToken(r.Context(), "", "")
				if err != nil {
					handleError(w, r, err)
					return
				}
				ctx := auth.ContextWithToken(r.Context(), token)
				ctx = user.WithID(ctx, token.UserID())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			tokenIDCookie, err := r.Cookie(cookieTokenID)
			if err != nil {
				writeError(w, r, goerr.New("authentication required", goerr.T(errs.TagUnauthorized)), http.StatusUnauthorized)
				return
			}

			tokenSecretCookie, err := r.Cookie(cookieTokenSecret)
			if err != nil {
				writeError(w, r, goerr.New("authentication required", goerr.T(errs.TagUnauthorized)), http.StatusUnauthorized)
				return
			}

			token, err := authUC.ValidateToken(r.Context(),
				auth.TokenID(tokenIDCookie.Value),
				auth.TokenSecret(tokenSecretCookie.Value))
			if err != nil {
				writeError(w, r, goerr.Wrap(err, "invalid authentication token", goerr.T(errs.TagUnauthorized)), http.StatusUnauthorized)
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			ctx = user.WithID(ctx, token.UserID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authorizeWithPolicy(policy interfaces.PolicyClient, noAuthorization bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Bypass authorization check if --no-authorization flag is set
			if noAuthorization {
				logging.From(r.Context()).Debug("authorization check bypassed due to --no-authorization flag")
				next.ServeHTTP(w, r)
				return
			}

			if policy == nil {
				next.ServeHTTP(w, r)
				return
			}

			var result struct {
				Allow bool `json:"allow"`
			}

			ctx := r.Context()
			authCtx := auth.BuildContext(ctx)
			if err := policy.Query(ctx, "data.auth", authCtx, &result); err != nil {
				handleError(w, r, goerr.Wrap(err, "failed to authorize request"))
				return
			}

			logging.From(ctx).Debug("authorization result", "input", authCtx, "output", result)

			if !result.Allow {
				logging.From(ctx).Warn("authorization failed", "auth", authCtx)
				http.Error(w, "Authorization failed. Check your policy.", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
