package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/cookiegame/game/engine"
	"github.com/wricardo/mcp-training/cookiegame/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the JSON payload pushed to clients. Version orders messages:
// clients keep the board with the highest version they have seen.
type Message struct {
	Event   string          `json:"event"`
	Board   string          `json:"board"`
	State   engine.Snapshot `json:"state"`
	Version uint64          `json:"version"`
}

// update is an encoded message queued for fan-out
type update struct {
	version uint64
	data    []byte
}

// Client represents a WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts board updates.
// There is a single board, so every client receives every update.
type Hub struct {
	clients map[*Client]bool

	// Encoded messages waiting to be fanned out
	broadcast chan update

	// Highest version delivered so far, owned by Run
	delivered uint64

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	connected atomic.Int64
	logger    *slog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan update, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "websocket"),
	}
}

// Run starts the hub's event loop. It returns when ctx is done, after
// disconnecting every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case u := <-h.broadcast:
			h.fanOut(u)

		case <-ctx.Done():
			for client := range h.clients {
				h.unregisterClient(client)
			}
			h.logger.Debug("hub stopped")
			return
		}
	}
}

// ClientCount reports the number of registered clients
func (h *Hub) ClientCount() int {
	return int(h.connected.Load())
}

// ServeWS upgrades the request and registers the connection. initial, when
// not nil, is the first message the client receives.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, initial []byte) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if initial != nil {
		client.send <- initial
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastBoard queues a board update for every connected client.
// Updates are dropped when the queue is full.
func (h *Hub) BroadcastBoard(view *service.BoardView) {
	data, err := EncodeBoard(view)
	if err != nil {
		h.logger.Error("failed to marshal board update", "error", err)
		return
	}

	select {
	case h.broadcast <- update{version: view.Version, data: data}:
	default:
		h.logger.Warn("broadcast queue full, dropping update", "event", view.Event)
	}
}

// EncodeBoard builds the wire message for view
func EncodeBoard(view *service.BoardView) ([]byte, error) {
	return json.Marshal(Message{
		Event:   view.Event,
		Board:   view.Rendered,
		State:   view.State,
		Version: view.Version,
	})
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	h.connected.Store(int64(len(h.clients)))

	h.logger.Debug("client registered", "clients", len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.connected.Store(int64(len(h.clients)))

	h.logger.Debug("client unregistered", "clients", len(h.clients))
}

// fanOut delivers u to every client unless a newer board already went out.
// Clients whose buffer is full are disconnected.
func (h *Hub) fanOut(u update) {
	if u.version < h.delivered {
		h.logger.Debug("dropping stale board update", "version", u.version, "delivered", h.delivered)
		return
	}
	h.delivered = u.version

	for client := range h.clients {
		select {
		case client.send <- u.data:
		default:
			h.unregisterClient(client)
		}
	}
}

// readPump keeps the connection alive and detects disconnects. Incoming
// messages are ignored.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection, one
// frame per message
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
