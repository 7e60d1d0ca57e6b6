package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/velic22/chirp/pkg/logger"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

// ReadPump reads events from the WebSocket until the connection drops, then
// unregisters the client. There is no reconnect logic server-side; the client
// reconnects and re-hydrates from the message API.
func (c *Client) ReadPump() {
	defer func() {
		c.detach()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				logger.Debug().Str("user_id", c.userID.String()).Msg("ws client closed connection")
			} else {
				logger.Debug().Err(err).Str("user_id", c.userID.String()).Msg("ws read error")
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events to the WebSocket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				logger.Debug().Err(err).Str("user_id", c.userID.String()).Msg("ws write error")
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				logger.Debug().Err(err).Str("user_id", c.userID.String()).Msg("ws ping error")
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event. A message.send is re-broadcast
// to everyone as message.receive; the sender is expected to have persisted
// the message over the HTTP API already, the relay itself stores nothing.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeMessageSend:
		out := &Event{
			Type:      EventTypeMessageReceive,
			Payload:   event.Payload,
			Timestamp: time.Now().Unix(),
		}
		c.hub.Broadcast(out)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	c.queue(data)
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	c.queue(data)
}

// queue hands data to the write pump unless the client is already dropped or
// its buffer is full; in both cases the event is discarded.
func (c *Client) queue(data []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
	}
}

// detach returns the client to the hub. When the hub loop has already shut
// down nobody reads unregister anymore, so a dropped client gives up instead
// of blocking.
func (c *Client) detach() {
	select {
	case c.hub.unregister <- c:
	case <-c.done:
	}
}
