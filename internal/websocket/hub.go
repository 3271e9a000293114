package websocket

import (
	"context"
	"encoding/json"

	"tasktracker/internal/models"
	"tasktracker/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// sendBuffer is how many events a slow client may lag behind before it is
// dropped.
const sendBuffer = 16

// Client is one live connection of a user.
type Client struct {
	UserID int64
	Send   chan []byte
}

func NewClient(userID int64) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, sendBuffer)}
}

type message struct {
	userID  int64
	payload []byte
}

// Hub fans events out to the connections of the user they belong to.
type Hub struct {
	clients    map[int64]map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client registry until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					close(c.Send)
				}
			}
			h.clients = nil
			return
		case c := <-h.register:
			set, ok := h.clients[c.UserID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[c.UserID] = set
			}
			set[c] = true
		case c := <-h.unregister:
			h.remove(c)
		case m := <-h.broadcast:
			for c := range h.clients[m.userID] {
				select {
				case c.Send <- m.payload:
				default:
					logger.SystemLogger.Warn("Dropping slow websocket client", zap.Int64("user_id", c.UserID))
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok || !set[c] {
		return
	}
	delete(set, c)
	close(c.Send)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
}

// Register adds c to the hub. On a stopped hub c.Send is closed right away.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish delivers ev to every connection of userID. It returns once the hub
// has accepted the event or has stopped.
func (h *Hub) Publish(userID int64, ev models.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding websocket event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message{userID: userID, payload: payload}:
	case <-h.done:
	}
}

// Serve pumps events to conn until the peer goes away. Incoming frames are
// read and discarded so close frames are noticed. conn is released by the
// websocket handler once Serve returns, so Serve waits for its writer.
func (h *Hub) Serve(conn *websocket.Conn, userID int64) {
	c := NewClient(userID)
	h.Register(c)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for payload := range c.Send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.SystemLogger.Info("Websocket write failed", zap.Int64("user_id", userID), zap.Error(err))
				// Unblocks the read loop below.
				_ = conn.Close()
				for range c.Send {
				}
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.Unregister(c)
	<-writerDone
}
