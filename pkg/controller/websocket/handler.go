package websocket

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/lectern-dev/lectern/pkg/domain/model/errs"
	"github.com/lectern-dev/lectern/pkg/domain/types"
	"github.com/lectern-dev/lectern/pkg/usecase"
	"github.com/lectern-dev/lectern/pkg/utils/logging"
	"github.com/lectern-dev/lectern/pkg/utils/user"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// Handler upgrades badge subscriptions to websocket connections.
type Handler struct {
	hub      *Hub
	useCases *usecase.UseCases
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, useCases *usecase.UseCases) *Handler {
	return &Handler{
		hub:      hub,
		useCases: useCases,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Cookie auth happens before the upgrade
				return true
			},
		},
	}
}

// HandleSessionBadges serves GET /ws/sessions/{sessionID}. The caller must
// own the session; ownership is checked before the upgrade so failures can
// still be reported over plain HTTP.
func (x *Handler) HandleSessionBadges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.From(ctx)

	sessionID := types.SessionID(chi.URLParam(r, "sessionID"))
	if err := sessionID.Validate(); err != nil {
		http.Error(w, "invalid session ID", http.StatusBadRequest)
		return
	}

	userID := user.FromContext(ctx)
	if userID == types.EmptyUserID {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if _, err := x.useCases.GetSession(ctx, sessionID); err != nil {
		errs.Handle(ctx, goerr.Wrap(err, "websocket subscription denied",
			goerr.V("session_id", sessionID)))
		http.Error(w, "session not found or access denied", http.StatusNotFound)
		return
	}

	conn, err := x.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("failed to upgrade websocket connection", logging.ErrAttr(err))
		return
	}

	client := x.hub.NewClient(conn, sessionID, userID)
	x.hub.Register(client)

	go client.writePump()
	go client.readPump()
}

// writePump pumps messages from the hub to the websocket connection. A
// goroutine running writePump is started for each connection; all writes go
// through it so there is at most one writer per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	c.mu.Lock()
	send := c.send
	c.mu.Unlock()

	for {
		select {
		case <-c.ctx.Done():
			return

		case message, ok := <-send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the websocket connection. The badge stream is one-way, so
// inbound frames are discarded; the pump exists to process control messages
// and to detect a dropped peer.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.From(c.ctx).Warn("unexpected websocket close",
					logging.ErrAttr(err), "session_id", c.sessionID)
			}
			return
		}
	}
}
