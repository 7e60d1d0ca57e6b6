package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/velic22/chirp/internal/domain"
	"github.com/velic22/chirp/internal/service"
	"github.com/velic22/chirp/internal/transport/http/middleware"
	"github.com/velic22/chirp/pkg/logger"
)

func init() {
	logger.Init("test")
}

type memUserRepo struct {
	users map[uuid.UUID]domain.User
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) Search(ctx context.Context, query string, exclude uuid.UUID, limit int) ([]domain.User, error) {
	return nil, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	return nil
}

type memMessageRepo struct {
	messages []domain.Message
}

func (r *memMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *memMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	for _, m := range r.messages {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *memMessageRepo) ListBetween(ctx context.Context, userA, userB uuid.UUID) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memMessageRepo) ListInvolving(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) MarkSeen(ctx context.Context, senderID, receiverID uuid.UUID) error {
	for i, m := range r.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID {
			r.messages[i].Seen = true
		}
	}
	return nil
}

func newTestHandler() (*ChatHandler, domain.User, domain.User) {
	alice := domain.User{ID: uuid.New(), Username: "alice", Name: "Alice"}
	bob := domain.User{ID: uuid.New(), Username: "bob", Name: "Bob"}

	users := &memUserRepo{users: map[uuid.UUID]domain.User{alice.ID: alice, bob.ID: bob}}
	svc := service.NewChatService(&memMessageRepo{}, users)

	return NewChatHandler(svc), alice, bob
}

func asUser(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	return r.WithContext(ctx)
}

func TestSendAndGetHistory(t *testing.T) {
	h, alice, bob := newTestHandler()

	body := `{"receiver":"` + bob.ID.String() + `","text":"hello"}`
	req := asUser(httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(body)), alice.ID)
	w := httptest.NewRecorder()
	h.Send(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var sent domain.Message
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	assert.Equal(t, "hello", sent.Text)
	assert.Equal(t, alice.ID, sent.SenderID)
	assert.False(t, sent.Seen)

	req = asUser(httptest.NewRequest("GET", "/api/v1/chat?partner="+bob.ID.String(), nil), alice.ID)
	w = httptest.NewRecorder()
	h.GetHistory(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var history []domain.Message
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history, 1)
	assert.Equal(t, sent.ID, history[0].ID)
}

func TestSendEmptyTextRejected(t *testing.T) {
	h, alice, bob := newTestHandler()

	body := `{"receiver":"` + bob.ID.String() + `","text":"   "}`
	req := asUser(httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(body)), alice.ID)
	w := httptest.NewRecorder()
	h.Send(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestSendMissingReceiverRejected(t *testing.T) {
	h, alice, _ := newTestHandler()

	req := asUser(httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"text":"hi"}`)), alice.ID)
	w := httptest.NewRecorder()
	h.Send(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_RECEIVER")
}

func TestSendToUnknownUserIs404(t *testing.T) {
	h, alice, _ := newTestHandler()

	body := `{"receiver":"` + uuid.NewString() + `","text":"hi"}`
	req := asUser(httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(body)), alice.ID)
	w := httptest.NewRecorder()
	h.Send(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHistoryRequiresPartner(t *testing.T) {
	h, alice, _ := newTestHandler()

	req := asUser(httptest.NewRequest("GET", "/api/v1/chat", nil), alice.ID)
	w := httptest.NewRecorder()
	h.GetHistory(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_PARTNER")
}

func TestListConversations(t *testing.T) {
	h, alice, bob := newTestHandler()

	body := `{"receiver":"` + bob.ID.String() + `","text":"hello"}`
	req := asUser(httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(body)), alice.ID)
	h.Send(httptest.NewRecorder(), req)

	req = asUser(httptest.NewRequest("GET", "/api/v1/conversations", nil), bob.ID)
	w := httptest.NewRecorder()
	h.ListConversations(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var partners []domain.UserSummary
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &partners))
	assert.Len(t, partners, 1)
	assert.Equal(t, alice.ID, partners[0].ID)
	assert.Equal(t, "alice", partners[0].Username)
	assert.NotContains(t, w.Body.String(), "email")
}

func TestMarkSeen(t *testing.T) {
	h, alice, bob := newTestHandler()

	body := `{"partner":"` + alice.ID.String() + `"}`
	req := asUser(httptest.NewRequest("POST", "/api/v1/chat/seen", strings.NewReader(body)), bob.ID)
	w := httptest.NewRecorder()
	h.MarkSeen(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestStartChat(t *testing.T) {
	h, alice, bob := newTestHandler()

	req := asUser(httptest.NewRequest("POST", "/api/v1/chat/start", strings.NewReader(`{"username":"bob"}`)), alice.ID)
	w := httptest.NewRecorder()
	h.StartChat(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), bob.ID.String())

	req = asUser(httptest.NewRequest("POST", "/api/v1/chat/start", strings.NewReader(`{"username":"ghost"}`)), alice.ID)
	w = httptest.NewRecorder()
	h.StartChat(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
