package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	websocket_controller "github.com/lectern-dev/lectern/pkg/controller/websocket"
	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/usecase"
)

type Server struct {
	router          *chi.Mux
	useCases        *usecase.UseCases
	authUC          interfaces.AuthUseCase
	policy          interfaces.PolicyClient
	websocketCtrl   *websocket_controller.Handler
	noAuthorization bool
}

type Options func(*Server)

func WithAuthUseCase(authUC interfaces.AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

func WithPolicy(policy interfaces.PolicyClient) Options {
	return func(s *Server) {
		s.policy = policy
	}
}

func WithNoAuthorization(disabled bool) Options {
	return func(s *Server) {
		s.noAuthorization = disabled
	}
}

func WithWebSocketHandler(handler *websocket_controller.Handler) Options {
	return func(s *Server) {
		s.websocketCtrl = handler
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		useCases: uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)
	r.Use(withAuthHTTPRequest)
	r.Use(validateGoogleIAPToken)
	r.Use(validateGoogleIDToken)

	r.Route("/api", func(r chi.Router) {
		r.Use(authorizeWithPolicy(s.policy, s.noAuthorization))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", authLoginHandler(s.authUC))
			r.Post("/logout", authLogoutHandler(s.authUC))
			r.Get("/me", authMeHandler(s.authUC))
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Post("/", createSessionHandler(uc))
			r.Get("/", listSessionsHandler(uc))

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", getSessionHandler(uc))
				r.Patch("/", updateSessionHandler(uc))
				r.Delete("/", deleteSessionHandler(uc))
				r.Put("/messages", updateSessionMessagesHandler(uc))
			})
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))
			r.Post("/", chatHandler(uc))
		})
	})

	if s.websocketCtrl != nil {
		r.Route("/ws", func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))
			r.Use(authorizeWithPolicy(s.policy, s.noAuthorization))

			r.Get("/sessions/{sessionID}", s.websocketCtrl.HandleSessionBadges)
		})
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
