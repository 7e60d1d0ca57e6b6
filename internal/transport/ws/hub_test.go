package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/velic22/chirp/internal/domain"
	"github.com/velic22/chirp/pkg/logger"
)

func init() {
	logger.Init("test")
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, cancel
}

func connect(t *testing.T, hub *Hub) *Client {
	t.Helper()
	client := NewClient(hub, nil, uuid.New())
	hub.register <- client
	return client
}

func receive(t *testing.T, client *Client) *Event {
	t.Helper()
	select {
	case data, ok := <-client.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var evt Event
		assert.NoError(t, json.Unmarshal(data, &evt))
		return &evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	hub, cancel := startHub(t)
	defer cancel()

	a := connect(t, hub)
	b := connect(t, hub)

	msg := domain.Message{ID: uuid.New(), Text: "hello"}
	evt, err := NewEvent(EventTypeMessageReceive, MessagePayload{Message: msg})
	assert.NoError(t, err)

	hub.Broadcast(evt)

	for _, c := range []*Client{a, b} {
		got := receive(t, c)
		assert.Equal(t, EventTypeMessageReceive, got.Type)

		var payload MessagePayload
		assert.NoError(t, json.Unmarshal(got.Payload, &payload))
		assert.Equal(t, msg.ID, payload.ID)
		assert.Equal(t, "hello", payload.Text)
	}
}

// A connected client that is not a participant in the conversation still
// receives the broadcast: the relay is deliberately unscoped.
func TestNonParticipantReceivesBroadcast(t *testing.T) {
	hub, cancel := startHub(t)
	defer cancel()

	sender := connect(t, hub)
	receiver := connect(t, hub)
	bystander := connect(t, hub)

	msg := domain.Message{ID: uuid.New(), SenderID: sender.userID, ReceiverID: receiver.userID, Text: "private?"}
	evt, err := NewEvent(EventTypeMessageReceive, MessagePayload{Message: msg})
	assert.NoError(t, err)

	hub.Broadcast(evt)

	got := receive(t, bystander)
	assert.Equal(t, EventTypeMessageReceive, got.Type)
}

func TestInboundSendIsRebroadcastToAll(t *testing.T) {
	hub, cancel := startHub(t)
	defer cancel()

	sender := connect(t, hub)
	other := connect(t, hub)

	payload, err := json.Marshal(MessagePayload{Message: domain.Message{ID: uuid.New(), Text: "via relay"}})
	assert.NoError(t, err)

	sender.handleEvent(&Event{Type: EventTypeMessageSend, Payload: payload})

	for _, c := range []*Client{sender, other} {
		got := receive(t, c)
		assert.Equal(t, EventTypeMessageReceive, got.Type)
		assert.JSONEq(t, string(payload), string(got.Payload))
	}
}

func TestUnregisterClosesClient(t *testing.T) {
	hub, cancel := startHub(t)
	defer cancel()

	client := connect(t, hub)
	hub.unregister <- client

	select {
	case _, ok := <-client.done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client was not closed on unregister")
	}
}

// A client the hub has dropped can still see inbound traffic while its
// connection drains; replies for it are discarded, never sent.
func TestEventAfterDropIsDiscarded(t *testing.T) {
	hub, cancel := startHub(t)
	defer cancel()

	client := connect(t, hub)
	hub.unregister <- client

	select {
	case <-client.done:
	case <-time.After(time.Second):
		t.Fatal("client was not dropped")
	}

	client.handleEvent(&Event{Type: EventTypePing})
	client.handleEvent(&Event{Type: "presence.subscribe"})

	select {
	case data := <-client.send:
		t.Fatalf("dropped client was queued an event: %s", data)
	default:
	}
}

func TestDetachAfterShutdownDoesNotBlock(t *testing.T) {
	hub, cancel := startHub(t)

	client := connect(t, hub)
	cancel()

	select {
	case <-client.done:
	case <-time.After(time.Second):
		t.Fatal("client was not dropped on shutdown")
	}

	detached := make(chan struct{})
	go func() {
		client.detach()
		close(detached)
	}()

	select {
	case <-detached:
	case <-time.After(time.Second):
		t.Fatal("detach blocked after hub shutdown")
	}
}

func TestShutdownClosesAllClients(t *testing.T) {
	hub, cancel := startHub(t)

	a := connect(t, hub)
	b := connect(t, hub)

	cancel()

	for _, c := range []*Client{a, b} {
		select {
		case _, ok := <-c.done:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("client was not closed on shutdown")
		}
	}
}

func TestRelayHoldsNoHistory(t *testing.T) {
	hub, cancel := startHub(t)
	defer cancel()

	early := connect(t, hub)

	evt, err := NewEvent(EventTypeMessageReceive, MessagePayload{Message: domain.Message{ID: uuid.New(), Text: "before"}})
	assert.NoError(t, err)
	hub.Broadcast(evt)
	receive(t, early)

	// A client connecting after the event sees nothing
	late := connect(t, hub)
	select {
	case <-late.send:
		t.Fatal("late client received a replayed event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPingAnsweredWithPong(t *testing.T) {
	hub, cancel := startHub(t)
	defer cancel()

	client := connect(t, hub)
	client.handleEvent(&Event{Type: EventTypePing})

	got := receive(t, client)
	assert.Equal(t, EventTypePong, got.Type)
}

func TestUnknownEventAnsweredWithError(t *testing.T) {
	hub, cancel := startHub(t)
	defer cancel()

	client := connect(t, hub)
	client.handleEvent(&Event{Type: "presence.subscribe"})

	got := receive(t, client)
	assert.Equal(t, EventTypeError, got.Type)

	var payload ErrorPayload
	assert.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.Equal(t, "UNKNOWN_EVENT", payload.Code)
}
