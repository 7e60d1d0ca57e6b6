package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velic22/chirp/internal/domain"
	"github.com/velic22/chirp/internal/repository"
)

var (
	ErrEmptyMessage      = errors.New("message text is required")
	ErrCannotMessageSelf = errors.New("cannot send a message to yourself")
	ErrUserNotFound      = errors.New("user not found")
)

// Notifier pushes real-time events to connected clients. Delivery is best
// effort; the message store stays the source of truth.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
}

// ChatService is the contract request handlers use for direct messaging:
// history reads, durable sends with relay notification, and conversation
// listing derived from the message log.
type ChatService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
}

func NewChatService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send validates, durably stores a message and only then notifies the relay.
// If the write fails the relay never hears about the message.
func (s *ChatService) Send(ctx context.Context, senderID, receiverID uuid.UUID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if senderID == receiverID {
		return nil, ErrCannotMessageSelf
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	now := time.Now()
	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Seen:       false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	// Re-read with sender display fields joined
	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}

	return full, nil
}

// GetHistory returns the full message history with a partner, oldest first.
func (s *ChatService) GetHistory(ctx context.Context, selfID, partnerID uuid.UUID) ([]domain.Message, error) {
	partner, err := s.userRepo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrUserNotFound
	}

	messages, err := s.messageRepo.ListBetween(ctx, selfID, partnerID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// ListConversations derives the user's conversation partners from the message
// log: every other party of a message involving the user, deduplicated. There
// is no stored conversation entity and no recency ordering. Partners are
// returned as display summaries, never full accounts.
func (s *ChatService) ListConversations(ctx context.Context, selfID uuid.UUID) ([]domain.UserSummary, error) {
	messages, err := s.messageRepo.ListInvolving(ctx, selfID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{})
	var partnerIDs []uuid.UUID
	for _, msg := range messages {
		partnerID := msg.SenderID
		if partnerID == selfID {
			partnerID = msg.ReceiverID
		}
		if partnerID == selfID {
			continue
		}
		if _, ok := seen[partnerID]; ok {
			continue
		}
		seen[partnerID] = struct{}{}
		partnerIDs = append(partnerIDs, partnerID)
	}

	users, err := s.userRepo.ListByIDs(ctx, partnerIDs)
	if err != nil {
		return nil, err
	}

	partners := make([]domain.UserSummary, 0, len(users))
	for _, u := range users {
		partners = append(partners, u.Summary())
	}
	return partners, nil
}

// MarkSeen marks every unseen message from the partner to the user as seen.
func (s *ChatService) MarkSeen(ctx context.Context, selfID, partnerID uuid.UUID) error {
	return s.messageRepo.MarkSeen(ctx, partnerID, selfID)
}

// StartChat resolves a username to the partner a client should open a
// conversation with.
func (s *ChatService) StartChat(ctx context.Context, selfID uuid.UUID, username string) (*domain.User, error) {
	partner, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrUserNotFound
	}
	if partner.ID == selfID {
		return nil, ErrCannotMessageSelf
	}
	return partner, nil
}
