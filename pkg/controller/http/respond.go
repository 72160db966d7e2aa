package http

import (
	"encoding/json"
	"net/http"

	"github.com/lectern-dev/lectern/pkg/utils/logging"
)

// apiResponse is the envelope shared by all JSON endpoints.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data}); err != nil {
		logging.From(r.Context()).Warn("failed to encode response", logging.ErrAttr(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if encErr := json.NewEncoder(w).Encode(apiResponse{Success: false, Error: err.Error()}); encErr != nil {
		logging.From(r.Context()).Warn("failed to encode error response", logging.ErrAttr(encErr))
	}
}
