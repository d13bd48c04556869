package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"MarketLens/pkg/logger"
)

// Event names pushed to connected chart UIs.
const (
	EventDatasetReplaced  = "dataset_replaced"
	EventSelectionChanged = "selection_changed"
	EventLog              = "log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// Event is one message on the wire.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Time    time.Time   `json:"time"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to every connected UI. It implements both the domain
// Notifier and the logger Publisher, so dataset events and aggregated log
// flushes share one channel to the operator.
type Hub struct {
	logger   *logger.Logger
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	quit       chan struct{}

	mu      sync.Mutex
	clients map[*client]struct{}
	running bool
}

// NewHub creates a hub; call Start before serving connections.
func NewHub(l *logger.Logger) *Hub {
	return &Hub{
		logger: l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The chart UI is served from anywhere during development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		quit:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
	}
}

// Start runs the hub loop.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

// Stop closes every connection and stops the loop.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Debug("ws client connected", logger.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer: drop it rather than stall the hub.
					delete(h.clients, c)
					close(c.send)
				}
			}
		case <-h.quit:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

// Broadcast pushes one event to all connected clients.
func (h *Hub) Broadcast(event string, payload interface{}) {
	msg, err := json.Marshal(Event{Type: event, Payload: payload, Time: time.Now()})
	if err != nil {
		h.logger.Warn("ws event marshal failed", logger.Error(err), logger.String("event", event))
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.quit:
	}
}

// PublishMessage satisfies logger.Publisher: flushed log batches become
// events on the same socket.
func (h *Hub) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	h.Broadcast(topic, payload)
	return nil
}

// Serve upgrades an HTTP request and pumps events until the peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	select {
	case h.register <- c:
	case <-h.quit:
		conn.Close()
		return nil
	}

	go c.writePump()
	go c.readPump(h)
	return nil
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// readPump discards inbound frames; the socket is push-only. It exists to
// process pongs and notice disconnects.
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.quit:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
