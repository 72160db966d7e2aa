package errs

import "github.com/m-mizutani/goerr/v2"

var (
	// Client errors (4xx)
	TagNotFound     = goerr.NewTag("not_found")    // 404
	TagValidation   = goerr.NewTag("validation")   // 400
	TagUnauthorized = goerr.NewTag("unauthorized") // 401
	TagForbidden    = goerr.NewTag("forbidden")    // 403

	// Server errors (5xx)
	TagInternal = goerr.NewTag("internal") // 500
	TagDatabase = goerr.NewTag("database") // 500 (specific to DB errors)
	TagExternal = goerr.NewTag("external") // 502/503

	// LLM interaction errors
	TagLLMError           = goerr.NewTag("llm_error")
	TagInvalidLLMResponse = goerr.NewTag("invalid_llm_response")

	TagInvalidRequest = goerr.NewTag("invalid_request")
)

// ErrActionUnavailable is returned from Tool.Configure when the tool lacks
// required configuration and should be skipped.
var ErrActionUnavailable = goerr.New("action is unavailable")
