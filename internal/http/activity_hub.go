package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/example/timeclock-kiosk/internal/application"
)

const (
	activityWriteWait  = 10 * time.Second
	activityPongWait   = 60 * time.Second
	activityPingPeriod = 30 * time.Second
	activitySendBuffer = 16
)

// ActivityHub streams the recent-activity feed over websockets. Each
// connection owns its own feed, starting empty, and receives the updated feed
// after every published entry.
type ActivityHub struct {
	mu       sync.Mutex
	clients  map[string]*activityClient
	feedMax  int
	upgrader websocket.Upgrader
	logger   *slog.Logger
	closed   bool
}

type activityClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	feed application.Feed
}

type activityMessage struct {
	Type  string             `json:"type"`
	Entry *activityEntryDTO  `json:"entry,omitempty"`
	Feed  []activityEntryDTO `json:"feed"`
}

// NewActivityHub returns a hub whose per-connection feeds hold at most
// feedMax entries.
func NewActivityHub(feedMax int, logger *slog.Logger) *ActivityHub {
	if feedMax <= 0 {
		feedMax = application.DefaultFeedMax
	}
	return &ActivityHub{
		clients: make(map[string]*activityClient),
		feedMax: feedMax,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: defaultLogger(logger),
	}
}

// Publish appends entry to every connection's feed and queues the result.
// Connections that cannot keep up are dropped.
func (h *ActivityHub) Publish(entry application.ActivityEntry) {
	dto := toActivityDTO(entry)

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		client.feed = application.PushActivity(client.feed, entry, h.feedMax)
		payload, err := json.Marshal(activityMessage{Type: "activity", Entry: &dto, Feed: toActivityDTOs(client.feed)})
		if err != nil {
			h.logger.Error("failed to encode activity", "client_id", id, "error", err)
			continue
		}
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("activity client too slow, dropping", "client_id", id)
			delete(h.clients, id)
			close(client.send)
		}
	}
}

// Clients returns the number of connected streams.
func (h *ActivityHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *ActivityHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.send)
	}
}

// ServeHTTP upgrades the request and registers the connection. The first
// message is a snapshot of the (empty) feed.
func (h *ActivityHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger(r.Context(), h.logger, "ActivityHub", "Stream")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := &activityClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, activitySendBuffer),
	}
	snapshot, _ := json.Marshal(activityMessage{Type: "snapshot", Feed: []activityEntryDTO{}})
	client.send <- snapshot

	if !h.register(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(activityWriteWait))
		_ = conn.Close()
		return
	}
	logger.InfoContext(r.Context(), "activity client connected", "client_id", client.id)

	go h.writePump(client)
	go h.readPump(client)
}

func (h *ActivityHub) register(client *activityClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client.id] = client
	return true
}

func (h *ActivityHub) unregister(client *activityClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		close(client.send)
	}
}

// readPump discards client messages and detects disconnects.
func (h *ActivityHub) readPump(client *activityClient) {
	defer func() {
		h.unregister(client)
		_ = client.conn.Close()
		h.logger.Info("activity client disconnected", "client_id", client.id)
	}()

	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(activityPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(activityPongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("activity read failed", "client_id", client.id, "error", err)
			}
			return
		}
	}
}

func (h *ActivityHub) writePump(client *activityClient) {
	ticker := time.NewTicker(activityPingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(activityWriteWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(activityWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
