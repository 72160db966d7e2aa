package usecase

import (
	"context"
	_ "embed"

	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/service/llm"
	"github.com/lectern-dev/lectern/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

//go:embed prompt/tutor_system_prompt.md
var tutorSystemPrompt string

// ChatRequest is one turn of the chat endpoint: the client's transient
// messages plus an optional session to load history from and persist into.
type ChatRequest struct {
	Messages  []chat.UIMessage `json:"messages"`
	SessionID types.SessionID  `json:"sessionId,omitempty"`
}

// Chat runs one tutoring turn. It merges persisted history with the
// incoming messages, prunes completed tool parts from the model input,
// streams generation events through the notifier, and finally writes the
// full transcript back to the session. Persistence failure after the
// stream has been delivered is logged, not returned.
func (x *UseCases) Chat(ctx context.Context, req *ChatRequest, notifier interfaces.ChatNotifier) error {
	logger := logging.From(ctx)

	conversation := x.mergeHistory(ctx, req)
	modelInput := filterForModel(conversation)

	rest, prompt, err := llm.SplitPrompt(modelInput)
	if err != nil {
		return err
	}

	history, err := llm.BuildHistory(rest)
	if err != nil {
		return goerr.Wrap(err, "failed to build model history")
	}

	recorder := newTranscriptRecorder(notifier)

	tools := make([]gollem.ToolSet, 0, len(x.tools))
	for _, tool := range x.tools {
		tools = append(tools, newRecordingToolSet(tool, recorder))
	}

	agentOpts := []gollem.Option{
		gollem.WithToolSets(tools...),
		gollem.WithSystemPrompt(tutorSystemPrompt),
		gollem.WithResponseMode(gollem.ResponseModeBlocking),
		gollem.WithLogger(logger),
		gollem.WithLoopLimit(x.loopLimit),
		gollem.WithContentBlockMiddleware(
			func(next gollem.ContentBlockHandler) gollem.ContentBlockHandler {
				return func(ctx context.Context, req *gollem.ContentRequest) (*gollem.ContentResponse, error) {
					resp, err := next(ctx, req)
					if err == nil && resp != nil {
						for _, text := range resp.Texts {
							recorder.recordText(ctx, text)
						}
					}
					return resp, err
				}
			},
		),
	}
	if history != nil {
		agentOpts = append(agentOpts, gollem.WithHistory(history))
	}

	agent := gollem.New(x.llmClient, agentOpts...)

	if _, err := agent.Execute(ctx, gollem.Text(prompt)); err != nil {
		return goerr.Wrap(err, "failed to execute agent", goerr.T(errs.TagLLMError))
	}

	if assistant := recorder.assistantMessage(); assistant != nil {
		conversation = append(conversation, *assistant)
	}

	if req.SessionID != types.EmptySessionID {
		persisted := chat.ToMessages(ctx, conversation)
		if err := x.UpdateSessionMessages(ctx, req.SessionID, persisted); err != nil {
			// The stream already reached the client; losing the write must
			// not fail the turn.
			errs.Handle(ctx, goerr.Wrap(err, "failed to persist chat transcript",
				goerr.V("session_id", req.SessionID)))
		}
	}

	return nil
}

// mergeHistory implements the continuation heuristic: when a session is
// named and the incoming batch has at most one entry, the request is a
// continuation and the persisted transcript is loaded and spliced in front
// of it. A fetch failure falls back silently to the incoming messages.
func (x *UseCases) mergeHistory(ctx context.Context, req *ChatRequest) []chat.UIMessage {
	if req.SessionID == types.EmptySessionID || len(req.Messages) > 1 {
		return req.Messages
	}

	sess, err := x.GetSession(ctx, req.SessionID)
	if err != nil {
		logging.From(ctx).Warn("failed to load session history, using incoming messages only",
			"session_id", req.SessionID, "error", err)
		return req.Messages
	}

	merged := chat.ToUIMessages(sess.Messages)
	return append(merged, req.Messages...)
}

// filterForModel drops messages with zero parts and strips completed tool
// parts from assistant messages: tool results must not be replayed into the
// model input. An assistant message emptied by the pruning is dropped.
func filterForModel(messages []chat.UIMessage) []chat.UIMessage {
	filtered := make([]chat.UIMessage, 0, len(messages))

	for _, msg := range messages {
		if len(msg.Parts) == 0 {
			continue
		}

		if msg.Role != types.RoleAssistant {
			filtered = append(filtered, msg)
			continue
		}

		parts := make([]chat.UIPart, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			if part.IsTool() && part.State == chat.UIPartStateOutputAvailable {
				continue
			}
			parts = append(parts, part)
		}
		if len(parts) == 0 {
			continue
		}

		msg.Parts = parts
		filtered = append(filtered, msg)
	}

	return filtered
}
