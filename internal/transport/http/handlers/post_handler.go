package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/velic22/chirp/internal/service"
	"github.com/velic22/chirp/internal/transport/http/middleware"
	"github.com/velic22/chirp/pkg/logger"
	"github.com/velic22/chirp/pkg/validator"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// List returns the home feed, or a user's posts when ?username= is given.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var err error
	var posts any
	if username := r.URL.Query().Get("username"); username != "" {
		posts, err = h.postService.ListByUsername(r.Context(), userID, username)
	} else {
		posts, err = h.postService.ListFeed(r.Context(), userID)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			logger.Error().Err(err).Msg("list posts failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreatePostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidatePost(input.Text); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	post, err := h.postService.Create(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyPost):
			writeError(w, http.StatusBadRequest, "MISSING_TEXT", "Post text is required")
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Parent post not found")
		default:
			logger.Error().Err(err).Msg("create post failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"post": post})
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	post, err := h.postService.Get(r.Context(), userID, postID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		default:
			logger.Error().Err(err).Msg("get post failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"post": post})
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.postService.ToggleLike, "is_liked")
}

func (h *PostHandler) ToggleRepost(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.postService.ToggleRepost, "is_reposted")
}

func (h *PostHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.postService.ToggleBookmark, "is_bookmarked")
}

func (h *PostHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	posts, err := h.postService.ListBookmarks(r.Context(), userID)
	if err != nil {
		logger.Error().Err(err).Msg("list bookmarks failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

type toggleFunc func(ctx context.Context, userID, postID uuid.UUID) (bool, error)

func (h *PostHandler) toggle(w http.ResponseWriter, r *http.Request, fn toggleFunc, field string) {
	userID := middleware.GetUserID(r.Context())

	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	state, err := fn(r.Context(), userID, postID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		default:
			logger.Error().Err(err).Msg("toggle failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{field: state})
}
