// Package stream pushes live market snapshots to websocket subscribers. The
// hub decouples the engine tick from client writes: the engine hands the hub
// a payload and moves on; clients that cannot keep up are dropped.
package stream

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub fans broadcast payloads out to the connected clients. Run must be
// started once; after that Register, Unregister and Broadcast are safe from
// any goroutine, before and after Close.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set. It exits once Close is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for c := range h.clients {
				close(c.send)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.log.Debug("stream client connected", slog.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Debug("stream client disconnected", slog.Int("clients", len(h.clients)))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer: drop it rather than stall the fan-out.
					delete(h.clients, c)
					close(c.send)
					h.log.Warn("stream client dropped, send buffer full")
				}
			}
		}
	}
}

// add attaches a client, unless the hub is already shut down. It reports
// whether the client was accepted.
func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// remove detaches a client. Safe to call after Close; the shutdown path in
// Run already closed the send channel.
func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast marshals v and queues it for every client. If the hub's own
// buffer is full the payload is discarded; the next tick supersedes it
// anyway.
func (h *Hub) Broadcast(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.log.Error("stream marshal", slog.String("err", err.Error()))
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
	}
}

// Close stops Run and disconnects all clients. Idempotent.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
