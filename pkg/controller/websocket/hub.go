package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/lectern-dev/lectern/pkg/domain/interfaces"
	"github.com/lectern-dev/lectern/pkg/domain/model/session"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Hub fans out session count badges to websocket clients. Clients subscribe
// to a single session; every transcript write pushes fresh message and
// flashcard counts to all of that session's subscribers.
type Hub struct {
	// Registered clients grouped by session ID
	sessions map[types.SessionID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

var _ interfaces.SessionObserver = &Hub{}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	sessionID types.SessionID
	userID    types.UserID

	ctx    context.Context
	cancel context.CancelFunc

	// Protects send against double close
	mu sync.Mutex
}

type broadcastMessage struct {
	SessionID types.SessionID
	Message   []byte
}

// badgeEvent is the wire format pushed to subscribers.
type badgeEvent struct {
	Type           string          `json:"type"`
	SessionID      types.SessionID `json:"sessionId"`
	MessageCount   int             `json:"message_count"`
	FlashcardCount int             `json:"flashcard_count"`
}

const (
	maxClientsPerSession = 10
	clientSendBufferSize = 64
)

func NewHub(ctx context.Context) *Hub {
	ctx, cancel := context.WithCancel(ctx)
	return &Hub{
		sessions:   make(map[types.SessionID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMessage),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	logger := logging.From(h.ctx)
	logger.Info("WebSocket hub started")

	defer func() {
		logger.Info("WebSocket hub stopped")
		h.cancel()
	}()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToSession(message)
		}
	}
}

// SessionUpdated implements interfaces.SessionObserver. It is called after
// every transcript write and never blocks the writer.
func (h *Hub) SessionUpdated(ctx context.Context, id types.SessionID, counts session.Counts) {
	data, err := json.Marshal(badgeEvent{
		Type:           "session-counts",
		SessionID:      id,
		MessageCount:   counts.Messages,
		FlashcardCount: counts.Flashcards,
	})
	if err != nil {
		logging.From(ctx).Error("failed to encode badge event", logging.ErrAttr(err))
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{SessionID: id, Message: data}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger := logging.From(h.ctx)

	clients, exists := h.sessions[client.sessionID]
	if !exists {
		clients = make(map[*Client]bool)
		h.sessions[client.sessionID] = clients
	}

	if len(clients) >= maxClientsPerSession {
		logger.Warn("Maximum clients reached for session",
			"session_id", client.sessionID,
			"max_clients", maxClientsPerSession)
		client.closeSend()
		return
	}

	clients[client] = true

	logger.Info("Client registered",
		"session_id", client.sessionID,
		"user_id", client.userID,
		"total_clients", len(clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.sessions[client.sessionID]; exists {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			client.closeSend()

			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}
		}
	}

	client.cancel()
}

func (h *Hub) broadcastToSession(message *broadcastMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, exists := h.sessions[message.SessionID]
	if !exists {
		return
	}

	for client := range clients {
		select {
		case client.send <- message.Message:
		default:
			// Slow client, drop it
			client.closeSend()
			client.cancel()
			delete(clients, client)
		}
	}

	if len(clients) == 0 {
		delete(h.sessions, message.SessionID)
	}
}

// ClientCount returns the number of clients subscribed to a session.
func (h *Hub) ClientCount(id types.SessionID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions[id])
}

func (h *Hub) NewClient(conn *websocket.Conn, sessionID types.SessionID, userID types.UserID) *Client {
	ctx, cancel := context.WithCancel(h.ctx)

	return &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, clientSendBufferSize),
		sessionID: sessionID,
		userID:    userID,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Close gracefully shuts down the hub and all client connections.
func (h *Hub) Close() error {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	var errList []error
	for _, clients := range h.sessions {
		for client := range clients {
			client.cancel()
			client.closeSend()
			if err := client.conn.Close(); err != nil {
				errList = append(errList, err)
			}
		}
	}
	h.sessions = make(map[types.SessionID]map[*Client]bool)

	if len(errList) > 0 {
		return goerr.New("failed to close websocket clients", goerr.V("errors", errList))
	}
	return nil
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.send != nil {
		close(c.send)
		c.send = nil
	}
}
