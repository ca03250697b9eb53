// Package ws implements the WebSocket hub that streams freshly detected
// opportunities to connected clients.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orbitarb/orbitarb/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	// sessionQueueSize is the per-client outgoing frame buffer. A client
	// that falls this far behind starts losing frames.
	sessionQueueSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced at the HTTP layer; the hub accepts any origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// envelope is the JSON frame sent to clients.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// session is one connected WebSocket client.
type session struct {
	conn  *websocket.Conn
	queue chan []byte
}

// Hub fans detected opportunities out to every connected WebSocket client.
// Sessions are tracked under a mutex; delivery to each session goes through a
// bounded queue so one stalled client cannot block the rest.
type Hub struct {
	mu        sync.RWMutex
	sessions  map[*session]struct{}
	feed      chan []byte
	logger    *slog.Logger
	mode      string
	startedAt time.Time
}

// NewHub creates a hub. mode is echoed in the status frame each client
// receives on connect.
func NewHub(mode string, logger *slog.Logger) *Hub {
	if mode == "" {
		mode = "unknown"
	}
	return &Hub{
		sessions:  make(map[*session]struct{}),
		feed:      make(chan []byte, 256),
		logger:    logger.With(slog.String("component", "ws")),
		mode:      mode,
		startedAt: time.Now().UTC(),
	}
}

// Broadcast queues an opportunity for delivery to every connected client.
// Non-blocking; the frame is dropped when the hub's feed is full.
func (h *Hub) Broadcast(o domain.Opportunity) {
	data, err := json.Marshal(envelope{Type: "opportunity", Payload: o})
	if err != nil {
		h.logger.Error("marshal opportunity failed", slog.String("error", err.Error()))
		return
	}
	select {
	case h.feed <- data:
	default:
		h.logger.Warn("feed full, dropping frame")
	}
}

// Run delivers queued frames to all sessions until ctx is cancelled, then
// closes every session.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for s := range h.sessions {
				close(s.queue)
				delete(h.sessions, s)
			}
			h.mu.Unlock()
			return ctx.Err()

		case data := <-h.feed:
			h.mu.RLock()
			for s := range h.sessions {
				select {
				case s.queue <- data:
				default:
					h.logger.Warn("dropping frame for slow client")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// HandleWS upgrades the request and attaches the client to the hub.
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", slog.String("error", err.Error()))
		return
	}

	s := &session{
		conn:  conn,
		queue: make(chan []byte, sessionQueueSize),
	}
	h.attach(s)
	h.greet(s)

	go h.writePump(s)
	go h.readPump(s)
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) attach(s *session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	n := len(h.sessions)
	h.mu.Unlock()
	h.logger.Info("client connected", slog.Int("total_clients", n))
}

// detach removes the session if still tracked. Safe to call more than once;
// the hub's shutdown path may have already removed it.
func (h *Hub) detach(s *session) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	if ok {
		delete(h.sessions, s)
		close(s.queue)
	}
	n := len(h.sessions)
	h.mu.Unlock()
	if ok {
		h.logger.Info("client disconnected", slog.Int("total_clients", n))
	}
}

// greet pushes a status envelope so clients can mark the connection healthy
// before the first opportunity arrives.
func (h *Hub) greet(s *session) {
	uptime := int64(time.Since(h.startedAt).Seconds())
	data, err := json.Marshal(envelope{
		Type: "status",
		Payload: map[string]any{
			"mode":           h.mode,
			"connected":      true,
			"uptime_seconds": uptime,
		},
	})
	if err != nil {
		return
	}
	select {
	case s.queue <- data:
	default:
	}
}

// readPump drains the connection so close frames and pongs are processed.
// Clients do not send application messages.
func (h *Hub) readPump(s *session) {
	defer func() {
		h.detach(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("unexpected close", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump writes queued frames as JSON text messages and keeps the
// connection alive with periodic pings.
func (h *Hub) writePump(s *session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.queue:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
