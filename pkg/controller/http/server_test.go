package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	controller "github.com/lectern-dev/lectern/pkg/controller/http"
	"github.com/lectern-dev/lectern/pkg/domain/model/session"
	"github.com/lectern-dev/lectern/pkg/repository"
	"github.com/lectern-dev/lectern/pkg/tool/flashcard"
	"github.com/lectern-dev/lectern/pkg/usecase"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newMockLLM(texts ...string) *mock.LLMClientMock {
	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			cfg := gollem.NewSessionConfig(opts...)
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					handler := gollem.BuildContentBlockChain(cfg.ContentBlockMiddlewares(),
						func(ctx context.Context, req *gollem.ContentRequest) (*gollem.ContentResponse, error) {
							return &gollem.ContentResponse{Texts: texts}, nil
						})
					resp, err := handler(ctx, &gollem.ContentRequest{Inputs: input, SystemPrompt: cfg.SystemPrompt()})
					if err != nil {
						return nil, err
					}
					return &gollem.Response{Texts: resp.Texts, FunctionCalls: resp.FunctionCalls}, nil
				},
				HistoryFunc: func() (*gollem.History, error) {
					return &gollem.History{}, nil
				},
				AppendHistoryFunc: func(history *gollem.History) error {
					return nil
				},
			}, nil
		},
	}
}

func newTestServer(t *testing.T) *controller.Server {
	t.Helper()

	uc := usecase.New(
		usecase.WithRepository(repository.NewMemory()),
		usecase.WithLLMClient(newMockLLM("streamed answer")),
		usecase.WithTools(flashcard.New()),
	)

	return controller.New(uc,
		controller.WithAuthUseCase(usecase.NewNoAuthnUseCase()),
		controller.WithNoAuthorization(true),
	)
}

func doJSON(t *testing.T, srv *controller.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestSessionAPI(t *testing.T) {
	srv := newTestServer(t)

	t.Run("create session", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]string{
			"title":   "Biology basics",
			"subject": "Biology",
		})
		gt.Equal(t, rec.Code, http.StatusCreated)

		var resp envelope
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		gt.True(t, resp.Success)

		var sess session.Session
		gt.NoError(t, json.Unmarshal(resp.Data, &sess))
		gt.Equal(t, sess.Title, "Biology basics")
		gt.Equal(t, sess.Status.String(), "active")
	})

	t.Run("validation failure returns 400 envelope", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]string{
			"subject": "Biology",
		})
		gt.Equal(t, rec.Code, http.StatusBadRequest)

		var resp envelope
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		gt.False(t, resp.Success)
		gt.S(t, resp.Error).Contains("title")
	})

	t.Run("lifecycle", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]string{
			"title":   "Chemistry",
			"subject": "Science",
		})
		gt.Equal(t, rec.Code, http.StatusCreated)

		var created envelope
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		var sess session.Session
		gt.NoError(t, json.Unmarshal(created.Data, &sess))

		rec = doJSON(t, srv, http.MethodGet, "/api/sessions", nil)
		gt.Equal(t, rec.Code, http.StatusOK)

		rec = doJSON(t, srv, http.MethodGet, "/api/sessions/"+sess.ID.String(), nil)
		gt.Equal(t, rec.Code, http.StatusOK)

		rec = doJSON(t, srv, http.MethodPatch, "/api/sessions/"+sess.ID.String(), map[string]string{
			"status": "completed",
		})
		gt.Equal(t, rec.Code, http.StatusOK)

		var updated envelope
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		var after session.Session
		gt.NoError(t, json.Unmarshal(updated.Data, &after))
		gt.Equal(t, after.Status.String(), "completed")

		rec = doJSON(t, srv, http.MethodDelete, "/api/sessions/"+sess.ID.String(), nil)
		gt.Equal(t, rec.Code, http.StatusOK)

		rec = doJSON(t, srv, http.MethodGet, "/api/sessions/"+sess.ID.String(), nil)
		gt.Equal(t, rec.Code, http.StatusNotFound)
	})

	t.Run("unknown session returns 404", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/sessions/0195e9f0-0000-7000-8000-000000000000", nil)
		gt.Equal(t, rec.Code, http.StatusNotFound)

		var resp envelope
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		gt.S(t, resp.Error).Contains("session not found or access denied")
	})
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("streams SSE events", func(t *testing.T) {
		body := map[string]any{
			"messages": []map[string]any{
				{
					"id":   "msg-1",
					"role": "user",
					"parts": []map[string]any{
						{"type": "text", "text": "teach me photosynthesis"},
					},
				},
			},
		}

		rec := doJSON(t, srv, http.MethodPost, "/api/chat", body)
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.S(t, rec.Header().Get("Content-Type")).Contains("text/event-stream")

		var types []string
		for _, line := range strings.Split(rec.Body.String(), "\n") {
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var ev map[string]any
			gt.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
			types = append(types, ev["type"].(string))
		}

		gt.True(t, slices.Contains(types, "text-delta"))
		gt.Equal(t, types[len(types)-1], "finish")
	})

	t.Run("empty messages rejected before streaming", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/chat", map[string]any{
			"messages": []map[string]any{},
		})
		gt.Equal(t, rec.Code, http.StatusBadRequest)
	})
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("me returns anonymous user in no-authn mode", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/auth/me", nil)
		gt.Equal(t, rec.Code, http.StatusOK)

		var resp envelope
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		gt.True(t, resp.Success)
		gt.S(t, string(resp.Data)).Contains("anonymous")
	})

	t.Run("malformed bearer token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		gt.Equal(t, rec.Code, http.StatusUnauthorized)
	})

	t.Run("logout clears cookies", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/logout", nil)
		gt.Equal(t, rec.Code, http.StatusOK)

		cookies := rec.Result().Cookies()
		gt.A(t, cookies).Longer(1)
		for _, c := range cookies {
			gt.Equal(t, c.Value, "")
		}
	})
}
