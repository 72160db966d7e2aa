package auth

import (
	"context"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

type authContextKey string

const (
	googleIDTokenClaimsKey authContextKey = "google_id_token_claims"
	googleIAPJWTClaimsKey  authContextKey = "google_iap_jwt_claims"
	httpRequestKey         authContextKey = "http_request"
)

// Context is the input document handed to the authorization policy.
type Context struct {
	Google map[string]interface{} `json:"google"`
	IAP    map[string]interface{} `json:"iap"`

	Req *HTTPRequest      `json:"req"`
	Env map[string]string `json:"env" masq:"secret"`
}

type HTTPRequest struct {
	Method string              `json:"method"`
	Path   string              `json:"path"`
	Body   string              `json:"body"`
	Header map[string][]string `json:"header"`
}

func WithGoogleIDTokenClaims(ctx context.Context, claims map[string]interface{}) context.Context {
	return context.WithValue(ctx, googleIDTokenClaimsKey, claims)
}

func WithGoogleIAPJWTClaims(ctx context.Context, claims map[string]interface{}) context.Context {
	return context.WithValue(ctx, googleIAPJWTClaimsKey, claims)
}

func WithHTTPRequest(ctx context.Context, req *HTTPRequest) context.Context {
	return context.WithValue(ctx, httpRequestKey, req)
}

// GetGoogleIAPJWTClaims retrieves verified IAP claims from context.
func GetGoogleIAPJWTClaims(ctx context.Context) (map[string]interface{}, error) {
	claims, ok := ctx.Value(googleIAPJWTClaimsKey).(map[string]interface{})
	if !ok {
		return nil, goerr.New("Google IAP JWT claims not found in context")
	}
	return claims, nil
}

// BuildContext collects everything the request carried into a policy input.
func BuildContext(ctx context.Context) Context {
	var authCtx Context

	if claims, ok := ctx.Value(googleIDTokenClaimsKey).(map[string]interface{}); ok {
		authCtx.Google = claims
	}

	if iapClaims, ok := ctx.Value(googleIAPJWTClaimsKey).(map[string]interface{}); ok {
		authCtx.IAP = iapClaims
	}

	if req, ok := ctx.Value(httpRequestKey).(*HTTPRequest); ok {
		authCtx.Req = req
	}

	authCtx.Env = make(map[string]string)
	for _, v := range os.Environ() {
		parts := strings.Split(v, "=")
		if len(parts) == 2 {
			authCtx.Env[parts[0]] = parts[1]
		}
	}

	return authCtx
}
