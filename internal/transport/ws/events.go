package ws

import (
	"encoding/json"
	"time"

	"github.com/velic22/chirp/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeMessageSend = "message.send"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageReceive = "message.receive"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event is the envelope for all WebSocket traffic.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// MessagePayload carries a persisted message, sender fields included.
type MessagePayload struct {
	domain.Message
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
