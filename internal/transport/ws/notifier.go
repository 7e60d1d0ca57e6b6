package ws

import (
	"github.com/velic22/chirp/internal/domain"
	"github.com/velic22/chirp/pkg/logger"
)

// HubNotifier implements service.Notifier using the WebSocket Hub. The chat
// service calls it only after a durable write, so clients never observe a
// message that could still fail to persist.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageReceive, MessagePayload{Message: *msg})
	if err != nil {
		logger.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.Broadcast(evt)
}
