package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"octofit/internal/logger"
	"octofit/internal/metrics"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// How often the leaderboard version is polled. Clients refetch only when
	// the version changes, at most once per interval.
	versionHeartbeatInterval = 2 * time.Second

	// MessageTypeVersion tags leaderboard version messages
	MessageTypeVersion = "LEADERBOARD_VERSION"
)

// VersionSource reports the current leaderboard version
type VersionSource interface {
	Version(ctx context.Context) (int64, error)
}

// Client represents a WebSocket client connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and pushes version changes to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	source     VersionSource
	interval   time.Duration

	mu sync.RWMutex

	// lastVersion is only touched by the Run goroutine
	lastVersion int64
}

// VersionUpdate is the message sent to clients
type VersionUpdate struct {
	Type    string `json:"type"`
	Version int64  `json:"version"`
}

// NewHub creates a new WebSocket hub
func NewHub(source VersionSource) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		source:     source,
		interval:   versionHeartbeatInterval,
	}
}

// Run serves registrations and polls the version until ctx is done
func (h *Hub) Run(ctx context.Context) {
	logger.Info("WebSocket hub started")

	versionTicker := time.NewTicker(h.interval)
	defer versionTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			metrics.SetWebsocketClients(count)
			logger.Debug("WebSocket client connected (total: %d)", count)

			h.sendInitialVersion(ctx, client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			metrics.SetWebsocketClients(count)
			logger.Debug("WebSocket client disconnected (total: %d)", count)

		case <-versionTicker.C:
			h.checkAndBroadcastVersion(ctx)

		case <-ctx.Done():
			logger.Info("WebSocket hub shutting down")
			return
		}
	}
}

func encodeVersion(version int64) []byte {
	message, _ := json.Marshal(VersionUpdate{Type: MessageTypeVersion, Version: version})
	return message
}

// checkAndBroadcastVersion broadcasts the version when it changed since the last poll
func (h *Hub) checkAndBroadcastVersion(ctx context.Context) {
	currentVersion, err := h.source.Version(ctx)
	if err != nil {
		logger.Warn("Failed to get leaderboard version: %v", err)
		return
	}
	if currentVersion == h.lastVersion {
		return
	}
	h.lastVersion = currentVersion
	logger.Debug("Leaderboard version changed to %d, broadcasting", currentVersion)

	message := encodeVersion(currentVersion)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			logger.Warn("WebSocket client send buffer full, skipping")
		}
	}
}

// sendInitialVersion sends the current version to a newly connected client
func (h *Hub) sendInitialVersion(ctx context.Context, client *Client) {
	currentVersion, err := h.source.Version(ctx)
	if err != nil {
		logger.Warn("Failed to get initial version: %v", err)
		return
	}
	if h.lastVersion == 0 {
		h.lastVersion = currentVersion
	}

	select {
	case client.send <- encodeVersion(currentVersion):
	default:
		logger.Warn("WebSocket client send buffer full, initial version dropped")
	}
}

// GetClientCount returns the current number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump drains the connection until the client goes away
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket unexpected close: %v", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ServeWS attaches a connection to the hub and blocks until it closes
func ServeWS(hub *Hub, conn *websocket.Conn) {
	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 16),
	}

	client.hub.register <- client
	go client.writePump()
	client.readPump()
}
