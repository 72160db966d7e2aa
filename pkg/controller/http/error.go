package http

import (
	"net/http"

	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.From(r.Context())

	switch {
	case goerr.HasTag(err, errs.TagNotFound):
		logger.Warn("Not Found", "error", err)
		writeError(w, r, err, http.StatusNotFound)

	case goerr.HasTag(err, errs.TagValidation), goerr.HasTag(err, errs.TagInvalidRequest):
		logger.Warn("Bad Request", "error", err)
		writeError(w, r, err, http.StatusBadRequest)

	case goerr.HasTag(err, errs.TagUnauthorized):
		logger.Warn("Unauthorized", "error", err)
		writeError(w, r, err, http.StatusUnauthorized)

	case goerr.HasTag(err, errs.TagForbidden):
		logger.Warn("Forbidden", "error", err)
		writeError(w, r, err, http.StatusForbidden)

	case goerr.HasTag(err, errs.TagLLMError), goerr.HasTag(err, errs.TagExternal):
		errs.Handle(r.Context(), err)
		writeError(w, r, err, http.StatusBadGateway)

	case goerr.HasTag(err, errs.TagDatabase), goerr.HasTag(err, errs.TagInternal):
		errs.Handle(r.Context(), err)
		writeError(w, r, err, http.StatusInternalServerError)

	default:
		errs.Handle(r.Context(), err)
		writeError(w, r, err, http.StatusInternalServerError)
	}
}
