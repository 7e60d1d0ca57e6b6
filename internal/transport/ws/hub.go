package ws

import (
	"context"
	"encoding/json"

	"github.com/velic22/chirp/pkg/logger"
)

// Hub is the delivery relay: it keeps the registry of live connections and
// fans every event out to all of them. Delivery is best effort and at most
// once; the relay holds no history, so clients hydrate from the message API
// on (re)connect. Every connected client receives every event regardless of
// whether it participates in the conversation.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
}

// Run drives the registry and broadcast loop until ctx is done. Call it in a
// goroutine; all registry mutation happens here, so connect and disconnect
// are safe to fire concurrently.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			logger.Debug().Str("user_id", client.userID.String()).Int("total", len(h.clients)).Msg("ws client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				logger.Debug().Str("user_id", client.userID.String()).Int("total", len(h.clients)).Msg("ws client disconnected")
			}

		case data := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Client buffer full - disconnect
					h.drop(client)
				}
			}

		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// Broadcast queues an event for delivery to every connected client. It never
// blocks the caller; when the relay is saturated the event is dropped.
func (h *Hub) Broadcast(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("ws hub: marshal error")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logger.Warn().Msg("ws hub: broadcast queue full, event dropped")
	}
}

// drop removes the client from the registry and signals both pumps to stop.
// The send channel is never closed: the read pump may still queue a pong or
// an error reply until its connection dies, so closing it would panic.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.done)
}
