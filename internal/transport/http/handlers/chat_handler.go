package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/velic22/chirp/internal/service"
	"github.com/velic22/chirp/internal/transport/http/middleware"
	"github.com/velic22/chirp/pkg/logger"
	"github.com/velic22/chirp/pkg/validator"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// GetHistory returns the message history with a partner, oldest first, each
// message carrying the sender's display fields.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	partnerStr := r.URL.Query().Get("partner")
	if partnerStr == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARTNER", "partner is required")
		return
	}
	partnerID, err := uuid.Parse(partnerStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid partner ID")
		return
	}

	messages, err := h.chatService.GetHistory(r.Context(), userID, partnerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			logger.Error().Err(err).Msg("get chat history failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// Send durably stores a message and notifies the relay, in that order.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		Receiver uuid.UUID `json:"receiver"`
		Text     string    `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.Receiver == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_RECEIVER", "receiver is required")
		return
	}
	if errs := validator.ValidateMessage(input.Text); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.chatService.Send(r.Context(), userID, input.Receiver, input.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "MISSING_TEXT", "Message text is required")
		case errors.Is(err, service.ErrCannotMessageSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_MESSAGE_SELF", "Cannot send a message to yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			logger.Error().Err(err).Msg("send message failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// ListConversations returns the distinct users the caller has exchanged
// messages with.
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	partners, err := h.chatService.ListConversations(r.Context(), userID)
	if err != nil {
		logger.Error().Err(err).Msg("list conversations failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, partners)
}

// MarkSeen marks all messages from a partner to the caller as seen.
func (h *ChatHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		Partner uuid.UUID `json:"partner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.Partner == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_PARTNER", "partner is required")
		return
	}

	if err := h.chatService.MarkSeen(r.Context(), userID, input.Partner); err != nil {
		logger.Error().Err(err).Msg("mark seen failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StartChat resolves a username to the partner ID a client opens a
// conversation with.
func (h *ChatHandler) StartChat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.Username == "" {
		writeError(w, http.StatusBadRequest, "MISSING_USERNAME", "username is required")
		return
	}

	partner, err := h.chatService.StartChat(r.Context(), userID, input.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrCannotMessageSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_MESSAGE_SELF", "Cannot start a conversation with yourself")
		default:
			logger.Error().Err(err).Msg("start chat failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"partner_id": partner.ID})
}
