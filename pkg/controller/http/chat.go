package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/usecase"
	"github.com/lectern-dev/lectern/pkg/utils/logging"
	"github.com/lectern-dev/lectern/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

type chatRequest struct {
	Messages  []chat.UIMessage `json:"messages"`
	SessionID types.SessionID  `json:"sessionId,omitempty"`
}

// sseWriter streams chat events as server-sent events. It implements
// interfaces.ChatNotifier; the mutex serializes writes because tool events
// and text blocks may arrive from different goroutines.
type sseWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	wrote   bool
}

var _ interfaces.ChatNotifier = &sseWriter{}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, goerr.New("streaming not supported by response writer")
	}
	return &sseWriter{w: w, flusher: flusher}, nil
}

func (x *sseWriter) emit(ctx context.Context, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.From(ctx).Error("failed to encode stream event", logging.ErrAttr(err))
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.wrote = true
	safe.Write(ctx, x.w, []byte("data: "))
	safe.Write(ctx, x.w, data)
	safe.Write(ctx, x.w, []byte("\n\n"))
	x.flusher.Flush()
}

func (x *sseWriter) NotifyText(ctx context.Context, text string) {
	x.emit(ctx, map[string]any{
		"type":  "text-delta",
		"delta": text,
	})
}

func (x *sseWriter) NotifyToolCall(ctx context.Context, ev *interfaces.ToolCallEvent) {
	x.emit(ctx, map[string]any{
		"type":       "tool-call",
		"toolCallId": ev.ToolCallID,
		"toolName":   ev.ToolName,
		"input":      ev.Input,
	})
}

func (x *sseWriter) NotifyToolResult(ctx context.Context, ev *interfaces.ToolResultEvent) {
	x.emit(ctx, map[string]any{
		"type":       "tool-result",
		"toolCallId": ev.ToolCallID,
		"toolName":   ev.ToolName,
		"output":     ev.Output,
	})
}

func (x *sseWriter) finish(ctx context.Context) {
	x.emit(ctx, map[string]any{"type": "finish"})
}

func (x *sseWriter) started() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.wrote
}

// chatHandler runs one turn of the tutoring conversation and streams the
// assistant output. Failures before the first byte of the stream surface as
// plain HTTP errors; failures after that are logged only.
func chatHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(errs.TagInvalidRequest)))
			return
		}
		if len(req.Messages) == 0 {
			handleError(w, r, goerr.New("messages are required", goerr.T(errs.TagInvalidRequest)))
			return
		}

		notifier, err := newSSEWriter(w)
		if err != nil {
			handleError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		if err := uc.Chat(ctx, &usecase.ChatRequest{
			Messages:  req.Messages,
			SessionID: req.SessionID,
		}, notifier); err != nil {
			// Before the first event the response is still plain HTTP.
			// After that, the failure has to travel in-stream.
			if !notifier.started() {
				handleError(w, r, err)
				return
			}
			errs.Handle(ctx, err)
			notifier.emit(ctx, map[string]any{
				"type":  "error",
				"error": err.Error(),
			})
			return
		}

		notifier.finish(ctx)
	}
}
