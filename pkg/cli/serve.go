package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lectern-dev/lectern/pkg/cli/config"
	server "github.com/lectern-dev/lectern/pkg/controller/http"
	websocket_controller "github.com/lectern-dev/lectern/pkg/controller/websocket"
	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/repository"
	"github.com/lectern-dev/lectern/pkg/usecase"
	"github.com/lectern-dev/lectern/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 30 * time.Second

func cmdServe() *cli.Command {
	var (
		addr            string
		noAuthn         bool
		noAuthorization bool
		policyCfg       config.Policy
		sentryCfg       config.Sentry
		llmCfg          config.LLMCfg
		firestoreCfg    config.Firestore
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Sources:     cli.EnvVars("LECTERN_ADDR"),
				Usage:       "Listen address (default: 127.0.0.1:8080)",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.BoolFlag{
				Name:        "no-authn",
				Usage:       "Disable authentication and act as an anonymous user (development only)",
				Category:    "Security",
				Sources:     cli.EnvVars("LECTERN_NO_AUTHN"),
				Destination: &noAuthn,
			},
			&cli.BoolFlag{
				Name:        "no-authorization",
				Aliases:     []string{"no-authz"},
				Usage:       "Disable policy-based authorization checks (development only)",
				Category:    "Security",
				Sources:     cli.EnvVars("LECTERN_NO_AUTHORIZATION"),
				Destination: &noAuthorization,
			},
		},
		policyCfg.Flags(),
		sentryCfg.Flags(),
		llmCfg.Flags(),
		firestoreCfg.Flags(),
		tools.Flags(),
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the tutoring service",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := logging.Default()
			logger.Info("starting server",
				"addr", addr,
				"noAuthn", noAuthn,
				"noAuthorization", noAuthorization,
				"policy", policyCfg,
				"sentry", sentryCfg,
				"llm", llmCfg,
				"firestore", firestoreCfg,
				"tools", tools,
			)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}

			policyClient, err := policyCfg.Configure()
			if err != nil {
				return err
			}

			llmClient, err := llmCfg.Configure(ctx)
			if err != nil {
				return err
			}

			var repo interfaces.Repository
			if firestoreCfg.IsConfigured() {
				firestoreRepo, err := firestoreCfg.Configure(ctx)
				if err != nil {
					return err
				}
				defer firestoreRepo.Close()
				repo = firestoreRepo
			} else {
				logger.Warn("⚠️  Firestore is not configured, using in-memory repository",
					"recommendation", "Set --firestore-project-id for persistent sessions")
				repo = repository.NewMemory()
			}

			toolSets, err := tools.ToolSets(ctx)
			if err != nil {
				return err
			}

			wsHub := websocket_controller.NewHub(ctx)
			go wsHub.Run()
			defer func() {
				if err := wsHub.Close(); err != nil {
					logger.Warn("failed to close websocket hub", logging.ErrAttr(err))
				}
			}()

			uc := usecase.New(
				usecase.WithRepository(repo),
				usecase.WithLLMClient(llmClient),
				usecase.WithTools(toolSets...),
				usecase.WithSessionObserver(wsHub),
			)

			var authUC interfaces.AuthUseCase
			if noAuthn {
				logger.Warn("⚠️  SECURITY WARNING: Authentication is DISABLED",
					"flag", "--no-authn",
					"recommendation", "This should only be used in development environments")
				authUC = usecase.NewNoAuthnUseCase()
			} else {
				authUC = usecase.NewAuthUseCase(repo)
			}

			serverOptions := []server.Options{
				server.WithAuthUseCase(authUC),
				server.WithWebSocketHandler(websocket_controller.NewHandler(wsHub, uc)),
			}
			if policyClient != nil {
				serverOptions = append(serverOptions, server.WithPolicy(policyClient))
			}
			if noAuthorization {
				logger.Warn("⚠️  SECURITY WARNING: Authorization checks are DISABLED",
					"flag", "--no-authorization",
					"recommendation", "This should only be used in development environments")
				serverOptions = append(serverOptions, server.WithNoAuthorization(true))
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.New(uc, serverOptions...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to listen and serve")
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("shutting down", "signal", sig.String())
			case <-ctx.Done():
				logger.Info("shutting down", "reason", "context cancelled")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			return nil
		},
	}
}
