package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/lectern-dev/lectern/pkg/cli/config"
	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/model/session"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/usecase"
	"github.com/lectern-dev/lectern/pkg/utils/user"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// consoleNotifier renders chat events to the terminal.
type consoleNotifier struct{}

var _ interfaces.ChatNotifier = &consoleNotifier{}

var (
	assistantColor = color.New(color.FgHiWhite)
	toolColor      = color.New(color.FgCyan)
)

func (x *consoleNotifier) NotifyText(_ context.Context, text string) {
	assistantColor.Println(text)
}

func (x *consoleNotifier) NotifyToolCall(_ context.Context, ev *interfaces.ToolCallEvent) {
	toolColor.Printf("⚡ %s(%v)\n", ev.ToolName, ev.Input)
}

func (x *consoleNotifier) NotifyToolResult(_ context.Context, ev *interfaces.ToolResultEvent) {
	toolColor.Printf("✓ %s → %v\n", ev.ToolName, ev.Output)
}

func cmdChat() *cli.Command {
	var (
		sessionID    string
		userID       string
		query        string
		subject      string
		firestoreCfg config.Firestore
		llmCfg       config.LLMCfg
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "session-id",
				Aliases:     []string{"i"},
				Usage:       "Session ID to continue (a new session is created when omitted)",
				Destination: &sessionID,
			},
			&cli.StringFlag{
				Name:        "user",
				Aliases:     []string{"u"},
				Usage:       "User ID owning the session",
				Value:       "cli",
				Sources:     cli.EnvVars("LECTERN_USER"),
				Destination: &userID,
			},
			&cli.StringFlag{
				Name:        "query",
				Aliases:     []string{"q"},
				Usage:       "Query prompt (if not provided, interactive mode will start)",
				Destination: &query,
			},
			&cli.StringFlag{
				Name:        "subject",
				Usage:       "Subject of a newly created session",
				Value:       "General",
				Destination: &subject,
			},
		},
		firestoreCfg.Flags(),
		llmCfg.Flags(),
		tools.Flags(),
	)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Chat with the tutor from the terminal",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if !firestoreCfg.IsConfigured() {
				return goerr.New("firestore-project-id is required for chat")
			}

			repo, err := firestoreCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure firestore")
			}
			defer repo.Close()

			llmClient, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}

			toolSets, err := tools.ToolSets(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure tools")
			}

			uc := usecase.New(
				usecase.WithRepository(repo),
				usecase.WithLLMClient(llmClient),
				usecase.WithTools(toolSets...),
			)

			ctx = user.WithID(ctx, types.UserID(userID))

			var sid types.SessionID
			if sessionID != "" {
				sid = types.SessionID(sessionID)
				if _, err := uc.GetSession(ctx, sid); err != nil {
					return goerr.Wrap(err, "failed to get session", goerr.V("session_id", sid))
				}
			} else {
				sess, err := uc.CreateSession(ctx, session.CreateInput{
					Title:   "Terminal chat",
					Subject: subject,
				})
				if err != nil {
					return goerr.Wrap(err, "failed to create session")
				}
				sid = sess.ID
				fmt.Printf("session: %s\n", sid)
			}

			notifier := &consoleNotifier{}

			sendMessage := func(text string) error {
				msg := chat.UIMessage{
					ID:    types.NewMessageID(),
					Role:  types.RoleUser,
					Parts: []chat.UIPart{chat.NewTextPart(text)},
				}
				return uc.Chat(ctx, &usecase.ChatRequest{
					Messages:  []chat.UIMessage{msg},
					SessionID: sid,
				}, notifier)
			}

			if query != "" {
				return sendMessage(query)
			}

			fmt.Println("Interactive mode. Type 'exit' to quit.")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				if err := sendMessage(line); err != nil {
					color.Red("error: %v", err)
				}
			}

			return scanner.Err()
		},
	}
}
