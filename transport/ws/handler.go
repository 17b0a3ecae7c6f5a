// Package ws is the reference transport adapter: it accepts websocket
// connections, decodes client events for the relay core, and writes the
// core's addressed deliveries back out. Everything protocol-specific
// stays here; the core only ever sees decoded events and sessions.
package ws

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/sink"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Handler struct {
	log        *slog.Logger
	service    services.IRelayService
	hub        *workers.Hub
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewHandler(log *slog.Logger, service services.IRelayService, hub *workers.Hub, bufferSize int) *Handler {
	return &Handler{
		log:     log,
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			// Origin filtering belongs to the reverse proxy in front
			// of the relay.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bufferSize: bufferSize,
	}
}

// ServeHTTP upgrades the request and runs the connection until the
// client goes away. Every connection gets a session for its username
// binding and a sink subscribed to the public and user-list topics;
// the private topic subscription is added once a JOIN binds a username.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	connID := uuid.NewString()
	session := NewSession()
	connSink := sink.NewConn(h.bufferSize)

	h.hub.Subscribe(contract.TopicPublic, connID, connSink)
	h.hub.Subscribe(contract.TopicUsers, connID, connSink)

	go h.writeLoop(ctx, conn, connSink)

	h.readLoop(ctx, conn, connID, session, connSink)

	// The connection is gone: stop fan-out to it first, then let the
	// core run the departure path exactly once.
	h.hub.Unsubscribe(connID)
	h.service.HandleDisconnect(ctx, session)
}

// readLoop decodes inbound events and hands them to the relay core in
// arrival order. It returns when the socket closes or a frame cannot
// be decoded.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, connID string, session *Session, connSink *sink.Conn) {
	privateSubscribed := false

	for {
		var evt domain.ChatEvent
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("Websocket read failed", "error", err)
			}
			return
		}

		h.service.HandleEvent(ctx, evt, session)

		// A successful JOIN bound a username; from now on direct
		// messages addressed to it must reach this connection.
		if username, ok := session.Resolve(); ok && !privateSubscribed {
			h.hub.Subscribe(contract.PrivateTopic(username), connID, connSink)
			privateSubscribed = true
			h.log.Debug(fmt.Sprintf("Connection %s bound to %s", connID, username))
		}
	}
}

// writeLoop drains the connection's sink and encodes each payload
// (a ChatEvent or a roster push) onto the socket. It is the only
// goroutine writing to the connection.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, connSink *sink.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-connSink.Deliveries:
			if err := conn.WriteJSON(payload); err != nil {
				h.log.Debug("Websocket write failed", "error", err)
				return
			}
		}
	}
}
