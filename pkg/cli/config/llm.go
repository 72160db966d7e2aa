package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

type LLMCfg struct {
	// Claude configuration
	claudeModel     string
	claudeProjectID string
	claudeLocation  string

	// Gemini configuration
	geminiModel     string
	geminiProjectID string
	geminiLocation  string
}

func (x *LLMCfg) Flags() []cli.Flag {
	return []cli.Flag{
		// Claude flags
		&cli.StringFlag{
			Name:        "claude-model",
			Usage:       "Claude model name",
			Sources:     cli.EnvVars("LECTERN_CLAUDE_MODEL"),
			Value:       "claude-sonnet-4@20250514",
			Destination: &x.claudeModel,
			Category:    "Claude",
		},
		&cli.StringFlag{
			Name:        "claude-project-id",
			Usage:       "Google Cloud Project ID for Claude Vertex AI",
			Sources:     cli.EnvVars("LECTERN_CLAUDE_PROJECT_ID"),
			Destination: &x.claudeProjectID,
			Category:    "Claude",
		},
		&cli.StringFlag{
			Name:        "claude-location",
			Usage:       "Google Cloud location for Claude Vertex AI",
			Sources:     cli.EnvVars("LECTERN_CLAUDE_LOCATION"),
			Value:       "us-east5",
			Destination: &x.claudeLocation,
			Category:    "Claude",
		},
		// Gemini flags
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model",
			Destination: &x.geminiModel,
			Category:    "Gemini",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("LECTERN_GEMINI_MODEL"),
		},
		&cli.StringFlag{
			Name:        "gemini-project-id",
			Usage:       "GCP Project ID for Vertex AI",
			Destination: &x.geminiProjectID,
			Category:    "Gemini",
			Sources:     cli.EnvVars("LECTERN_GEMINI_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "GCP Location for Vertex AI",
			Value:       "us-central1",
			Destination: &x.geminiLocation,
			Category:    "Gemini",
			Sources:     cli.EnvVars("LECTERN_GEMINI_LOCATION"),
		},
	}
}

func (x LLMCfg) LogValue() slog.Value {
	attrs := []slog.Attr{}

	if x.claudeProjectID != "" {
		attrs = append(attrs,
			slog.String("claude_model", x.claudeModel),
			slog.String("claude_project_id", x.claudeProjectID),
			slog.String("claude_location", x.claudeLocation),
		)
	}

	attrs = append(attrs,
		slog.String("gemini_model", x.geminiModel),
		slog.String("gemini_project_id", x.geminiProjectID),
		slog.String("gemini_location", x.geminiLocation),
	)

	return slog.GroupValue(attrs...)
}

// Configure creates an LLM client, preferring Claude if configured.
func (x *LLMCfg) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if x.claudeProjectID != "" {
		return x.configureClaude(ctx)
	}

	if x.geminiProjectID == "" {
		return nil, goerr.New("either claude-project-id or gemini-project-id is required")
	}

	return x.configureGemini(ctx)
}

func (x *LLMCfg) configureClaude(ctx context.Context) (gollem.LLMClient, error) {
	options := []claude.VertexOption{
		claude.WithVertexModel(x.claudeModel),
	}

	client, err := claude.NewWithVertex(ctx, x.claudeLocation, x.claudeProjectID, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Claude Vertex AI client",
			goerr.V("projectID", x.claudeProjectID),
			goerr.V("location", x.claudeLocation),
			goerr.V("model", x.claudeModel))
	}

	return client, nil
}

func (x *LLMCfg) configureGemini(ctx context.Context) (gollem.LLMClient, error) {
	options := []gemini.Option{
		gemini.WithModel(x.geminiModel),
	}

	client, err := gemini.New(ctx, x.geminiProjectID, x.geminiLocation, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	return client, nil
}

// ActiveProvider returns the name of the LLM provider that Configure would use.
func (x *LLMCfg) ActiveProvider() string {
	if x.claudeProjectID != "" {
		return "claude"
	}
	if x.geminiProjectID != "" {
		return "gemini"
	}
	return "none"
}
