package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/domain/model/session"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
)

func createSessionHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input session.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			handleError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(errs.TagInvalidRequest)))
			return
		}

		sess, err := uc.CreateSession(r.Context(), input)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondSuccess(w, r, http.StatusCreated, sess)
	}
}

func listSessionsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := uc.ListSessions(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondSuccess(w, r, http.StatusOK, sessions)
	}
}

func getSessionHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := types.SessionID(chi.URLParam(r, "sessionID"))

		sess, err := uc.GetSession(r.Context(), sessionID)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondSuccess(w, r, http.StatusOK, sess)
	}
}

func updateSessionHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := types.SessionID(chi.URLParam(r, "sessionID"))

		var input session.UpdateInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			handleError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(errs.TagInvalidRequest)))
			return
		}

		sess, err := uc.UpdateSession(r.Context(), sessionID, input)
		if err != nil {
			handleError(w, r, err)
			return
		}

		respondSuccess(w, r, http.StatusOK, sess)
	}
}

type updateMessagesRequest struct {
	Messages []chat.UIMessage `json:"messages"`
}

// updateSessionMessagesHandler lets the client persist its transient
// transcript directly, mirroring the save that normally happens at the end
// of a chat turn.
func updateSessionMessagesHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := types.SessionID(chi.URLParam(r, "sessionID"))

		var req updateMessagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(errs.TagInvalidRequest)))
			return
		}

		messages := chat.ToMessages(r.Context(), req.Messages)
		if err := uc.UpdateSessionMessages(r.Context(), sessionID, messages); err != nil {
			handleError(w, r, err)
			return
		}

		respondSuccess(w, r, http.StatusOK, nil)
	}
}

func deleteSessionHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := types.SessionID(chi.URLParam(r, "sessionID"))

		if err := uc.DeleteSession(r.Context(), sessionID); err != nil {
			handleError(w, r, err)
			return
		}

		respondSuccess(w, r, http.StatusOK, nil)
	}
}
