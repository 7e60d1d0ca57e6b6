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
	ErrPostNotFound = errors.New("post not found")
	ErrEmptyPost    = errors.New("post text is required")
)

type PostService struct {
	postRepo     repository.PostRepository
	likeRepo     repository.LikeRepository
	bookmarkRepo repository.BookmarkRepository
	userRepo     repository.UserRepository
}

func NewPostService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	bookmarkRepo repository.BookmarkRepository,
	userRepo repository.UserRepository,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		likeRepo:     likeRepo,
		bookmarkRepo: bookmarkRepo,
		userRepo:     userRepo,
	}
}

type CreatePostInput struct {
	Text     string     `json:"text"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// Create stores a new post, or a reply when ParentID is set.
func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, input CreatePostInput) (*domain.Post, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, ErrEmptyPost
	}

	if input.ParentID != nil {
		parent, err := s.postRepo.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrPostNotFound
		}
	}

	now := time.Now()
	post := &domain.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Text:      text,
		ParentID:  input.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// ListFeed returns the newest parent posts with viewer like flags attached.
func (s *PostService) ListFeed(ctx context.Context, viewerID uuid.UUID) ([]domain.Post, error) {
	posts, err := s.postRepo.ListFeed(ctx, 20)
	if err != nil {
		return nil, err
	}
	return s.attachLikedByMe(ctx, viewerID, posts)
}

// Get returns a single post with its replies (newest first) and the viewer's
// like/bookmark flags.
func (s *PostService) Get(ctx context.Context, viewerID, postID uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	replies, err := s.postRepo.ListReplies(ctx, postID)
	if err != nil {
		return nil, err
	}
	replies, err = s.attachLikedByMe(ctx, viewerID, replies)
	if err != nil {
		return nil, err
	}
	post.Replies = replies

	like, err := s.likeRepo.Get(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	post.LikedByMe = like != nil

	bookmark, err := s.bookmarkRepo.Get(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	post.BookmarkedByMe = bookmark != nil

	return post, nil
}

// ListByUsername returns a user's parent posts, newest first.
func (s *PostService) ListByUsername(ctx context.Context, viewerID uuid.UUID, username string) ([]domain.Post, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrUserNotFound
	}

	posts, err := s.postRepo.ListByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	return s.attachLikedByMe(ctx, viewerID, posts)
}

// ToggleLike likes the post if not yet liked, otherwise removes the like.
// The stored likes_count is recomputed from the likes table afterwards.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if post == nil {
		return false, ErrPostNotFound
	}

	existing, err := s.likeRepo.Get(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	liked := false
	if existing != nil {
		if err := s.likeRepo.Delete(ctx, existing.ID); err != nil {
			return false, err
		}
	} else {
		like := &domain.Like{
			ID:        uuid.New(),
			AuthorID:  userID,
			PostID:    postID,
			CreatedAt: time.Now(),
		}
		if err := s.likeRepo.Create(ctx, like); err != nil {
			return false, fmt.Errorf("creating like: %w", err)
		}
		liked = true
	}

	count, err := s.likeRepo.CountByPost(ctx, postID)
	if err != nil {
		return false, err
	}
	if err := s.postRepo.SetLikesCount(ctx, postID, count); err != nil {
		return false, err
	}

	return liked, nil
}

// ToggleRepost creates a repost copying the original text, or removes an
// existing one, keeping the parent's reposts_count in step.
func (s *PostService) ToggleRepost(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if post == nil {
		return false, ErrPostNotFound
	}

	existing, err := s.postRepo.GetRepost(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	if existing != nil {
		if err := s.postRepo.Delete(ctx, existing.ID); err != nil {
			return false, err
		}
		if err := s.postRepo.IncRepostsCount(ctx, postID, -1); err != nil {
			return false, err
		}
		return false, nil
	}

	now := time.Now()
	repost := &domain.Post{
		ID:        uuid.New(),
		AuthorID:  userID,
		Text:      post.Text,
		ParentID:  &postID,
		IsRepost:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.postRepo.Create(ctx, repost); err != nil {
		return false, fmt.Errorf("creating repost: %w", err)
	}
	if err := s.postRepo.IncRepostsCount(ctx, postID, 1); err != nil {
		return false, err
	}

	return true, nil
}

// ToggleBookmark bookmarks the post or removes an existing bookmark.
func (s *PostService) ToggleBookmark(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if post == nil {
		return false, ErrPostNotFound
	}

	existing, err := s.bookmarkRepo.Get(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if err := s.bookmarkRepo.Delete(ctx, existing.ID); err != nil {
			return false, err
		}
		return false, nil
	}

	bookmark := &domain.Bookmark{
		ID:        uuid.New(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now(),
	}
	if err := s.bookmarkRepo.Create(ctx, bookmark); err != nil {
		return false, fmt.Errorf("creating bookmark: %w", err)
	}

	return true, nil
}

// ListBookmarks returns the user's bookmarked posts, most recently saved first.
func (s *PostService) ListBookmarks(ctx context.Context, userID uuid.UUID) ([]domain.Post, error) {
	posts, err := s.bookmarkRepo.ListPostsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].BookmarkedByMe = true
	}
	return s.attachLikedByMe(ctx, userID, posts)
}

func (s *PostService) attachLikedByMe(ctx context.Context, viewerID uuid.UUID, posts []domain.Post) ([]domain.Post, error) {
	if posts == nil {
		return []domain.Post{}, nil
	}

	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likedIDs, err := s.likeRepo.ListPostIDsLikedBy(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	liked := make(map[uuid.UUID]struct{}, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = struct{}{}
	}
	for i := range posts {
		_, ok := liked[posts[i].ID]
		posts[i].LikedByMe = ok
	}

	return posts, nil
}
