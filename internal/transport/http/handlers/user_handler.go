package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/velic22/chirp/internal/service"
	"github.com/velic22/chirp/internal/transport/http/middleware"
	"github.com/velic22/chirp/pkg/logger"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Get fetches a profile by ?id= or ?username=.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("id")
	username := r.URL.Query().Get("username")

	switch {
	case idStr != "":
		id, err := uuid.Parse(idStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
			return
		}
		u, err := h.userService.GetByID(r.Context(), id)
		if err != nil {
			h.writeUserError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": u})

	case username != "":
		u, err := h.userService.GetByUsername(r.Context(), username)
		if err != nil {
			h.writeUserError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": u})

	default:
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "id or username is required")
	}
}

// Update changes the caller's own profile.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		h.writeUserError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Search looks users up by username fragment, excluding the caller.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	users, err := h.userService.Search(r.Context(), userID, r.URL.Query().Get("query"))
	if err != nil {
		logger.Error().Err(err).Msg("search users failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	logger.Error().Err(err).Msg("user operation failed")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
}
