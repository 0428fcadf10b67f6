// Package realtime pushes ticket snapshots to the terminal UI over websockets.
// Each client subscribes to one caja; every change to that caja's ticket is
// sent as a JSON message.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"comercioapp/internal/dto"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type MessageType string

const (
	TypeTicket    MessageType = "ticket"
	TypeHeartbeat MessageType = "heartbeat"
)

// Message is the only frame the hub writes.
type Message struct {
	Type      MessageType     `json:"type"`
	CajaID    int64           `json:"caja_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

const (
	sendBuffer     = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	heartbeatEvery = 30 * time.Second
)

type client struct {
	id     string
	cajaID int64
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
}

type envio struct {
	cajaID int64
	data   []byte
}

// Hub fans snapshots out to subscribed clients. Publicar never blocks: when
// the hub is saturated the snapshot is dropped, and a slow client whose
// buffer is full is disconnected.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	upgrader websocket.Upgrader

	broadcast  chan envio
	register   chan *client
	unregister chan *client
	done       chan struct{}
	cerrar     sync.Once
}

// ErrHubCerrado is returned by Serve once Run has returned.
var ErrHubCerrado = errors.New("ws: hub closed")

// NewHub accepts upgrades from the given browser origins; an empty list
// accepts any. Requests without an Origin header (non-browser terminals) are
// always accepted.
func NewHub(origenes []string) *Hub {
	h := &Hub{
		clients:    make(map[string]*client),
		broadcast:  make(chan envio, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     origenPermitido(origenes),
	}
	return h
}

func origenPermitido(origenes []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(origenes) == 0 {
			return true
		}
		for _, o := range origenes {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		log.Warn().Str("origin", origin).Msg("ws: origin rejected")
		return false
	}
}

// Run is the hub loop; it returns when ctx is cancelled, closing every client.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.cerrar.Do(func() { close(h.done) })
			h.mu.Lock()
			for id, c := range h.clients {
				delete(h.clients, id)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.mu.Unlock()
			log.Debug().Str("client_id", c.id).Int64("caja_id", c.cajaID).Msg("ws: client registered")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
				log.Debug().Str("client_id", c.id).Msg("ws: client unregistered")
			}
			h.mu.Unlock()

		case e := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				if c.cajaID != e.cajaID {
					continue
				}
				select {
				case c.send <- e.data:
				default:
					// Client buffer is full, disconnect
					delete(h.clients, id)
					close(c.send)
				}
			}
			h.mu.Unlock()

		case <-ticker.C:
			msg, _ := json.Marshal(Message{Type: TypeHeartbeat, Timestamp: time.Now().UTC()})
			h.mu.Lock()
			for _, c := range h.clients {
				select {
				case c.send <- msg:
				default:
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publicar implements service.TicketPublisher.
func (h *Hub) Publicar(cajaID int64, snap dto.TicketResponse) {
	data, err := encode(cajaID, snap)
	if err != nil {
		log.Error().Err(err).Int64("caja_id", cajaID).Msg("ws: encode snapshot")
		return
	}
	select {
	case h.broadcast <- envio{cajaID: cajaID, data: data}:
	default:
		log.Warn().Int64("caja_id", cajaID).Msg("ws: hub saturated, snapshot dropped")
	}
}

// Clientes returns the number of connected clients.
func (h *Hub) Clientes() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and subscribes the connection to cajaID,
// sending inicial first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, cajaID int64, inicial dto.TicketResponse) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{
		id:     uuid.NewString(),
		cajaID: cajaID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    h,
	}
	if data, err := encode(cajaID, inicial); err == nil {
		c.send <- data
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return ErrHubCerrado
	}

	go c.writePump()
	go c.readPump()
	return nil
}

func encode(cajaID int64, snap dto.TicketResponse) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: TypeTicket, CajaID: cajaID, Timestamp: time.Now().UTC(), Data: data})
}

// readPump only drains control frames; clients never send data.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("client_id", c.id).Msg("ws: read error")
			}
			return
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
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
