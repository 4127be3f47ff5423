// Package realtime pushes change notifications to connected browsers over
// websockets.
package realtime

import (
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Type      string `json:"type"`
	Action    string `json:"action,omitempty"`
	Data      any    `json:"data,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	send chan Message
}

// Hub tracks connected clients and fans messages out to them.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]*client
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub accepts connections from the listed origins; "*" allows any origin.
func NewHub(origins []string, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		clients: make(map[string]*client),
		log:     log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
		},
	}
	return h
}

// Publish broadcasts a change to every client.
func (h *Hub) Publish(kind, action string, data any) {
	h.broadcast(Message{Type: kind, Action: action, Data: data}, "")
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

// ServeWS upgrades the request and registers the connection.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := c.Query("clientId")
	if id == "" {
		id = uuid.NewString()
	}
	cl := &client{hub: h, conn: conn, id: id, send: make(chan Message, sendBuffer)}

	h.mu.Lock()
	if old, ok := h.clients[id]; ok {
		close(old.send)
	}
	h.clients[id] = cl
	h.mu.Unlock()
	h.log.Info("websocket client connected", zap.String("client_id", id))

	h.reply(cl, Message{Type: "welcome", ClientID: id, Timestamp: time.Now().Unix()})

	go cl.writePump()
	go cl.readPump()
}

// broadcast sends msg to everyone except skip. Clients whose buffer is full
// are dropped.
func (h *Hub) broadcast(msg Message, skip string) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		if id == skip {
			continue
		}
		select {
		case c.send <- msg:
		default:
			h.log.Warn("dropping slow websocket client", zap.String("client_id", id))
			close(c.send)
			delete(h.clients, id)
		}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.id]; ok && cur == c {
		close(c.send)
		delete(h.clients, c.id)
		h.log.Info("websocket client disconnected", zap.String("client_id", c.id))
	}
}

// reply queues a message for this client only, unless it is already gone.
func (h *Hub) reply(c *client, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.id]; ok && cur == c {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "ping":
			c.hub.reply(c, Message{Type: "pong", ClientID: c.id, Timestamp: time.Now().Unix()})
		case "event_created", "event_updated", "event_deleted":
			// relay to everyone but the sender
			c.hub.broadcast(Message{
				Type:     "event_update",
				Action:   strings.TrimPrefix(msg.Type, "event_"),
				Data:     msg.Data,
				ClientID: c.id,
			}, c.id)
		default:
			c.hub.log.Debug("unknown websocket message", zap.String("client_id", c.id), zap.String("type", msg.Type))
		}
	}
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
			if err := c.conn.WriteJSON(msg); err != nil {
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
