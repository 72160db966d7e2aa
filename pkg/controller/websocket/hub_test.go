package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lectern-dev/lectern/pkg/domain/model/session"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHubBroadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(ctx)
	go hub.Run()

	sessionID := types.NewSessionID()
	otherID := types.NewSessionID()

	subscriber := hub.NewClient(nil, sessionID, types.UserID("user-1"))
	bystander := hub.NewClient(nil, otherID, types.UserID("user-2"))
	hub.Register(subscriber)
	hub.Register(bystander)

	waitFor(t, func() bool {
		return hub.ClientCount(sessionID) == 1 && hub.ClientCount(otherID) == 1
	})

	hub.SessionUpdated(ctx, sessionID, session.Counts{Messages: 4, Flashcards: 2})

	select {
	case raw := <-subscriber.send:
		var ev badgeEvent
		gt.NoError(t, json.Unmarshal(raw, &ev))
		gt.Equal(t, ev.Type, "session-counts")
		gt.Equal(t, ev.SessionID, sessionID)
		gt.Equal(t, ev.MessageCount, 4)
		gt.Equal(t, ev.FlashcardCount, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not receive badge event")
	}

	select {
	case <-bystander.send:
		t.Fatal("bystander received event for a foreign session")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(ctx)
	go hub.Run()

	sessionID := types.NewSessionID()
	client := hub.NewClient(nil, sessionID, types.UserID("user-1"))
	hub.Register(client)
	waitFor(t, func() bool { return hub.ClientCount(sessionID) == 1 })

	hub.Unregister(client)
	waitFor(t, func() bool { return hub.ClientCount(sessionID) == 0 })

	// Broadcasting to an empty session must not block or panic
	hub.SessionUpdated(ctx, sessionID, session.Counts{Messages: 1})
}

func TestHubClientLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(ctx)
	go hub.Run()

	sessionID := types.NewSessionID()
	for i := 0; i < maxClientsPerSession; i++ {
		hub.Register(hub.NewClient(nil, sessionID, types.UserID("user-1")))
	}
	waitFor(t, func() bool { return hub.ClientCount(sessionID) == maxClientsPerSession })

	extra := hub.NewClient(nil, sessionID, types.UserID("user-1"))
	extraSend := extra.send
	hub.Register(extra)

	// The extra client is rejected and its send channel closed
	waitFor(t, func() bool {
		select {
		case _, ok := <-extraSend:
			return !ok
		default:
			return false
		}
	})
	gt.Equal(t, hub.ClientCount(sessionID), maxClientsPerSession)
}
