package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/velic22/chirp/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	Search(ctx context.Context, query string, exclude uuid.UUID, limit int) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListBetween returns every message whose unordered sender/receiver pair
	// is {userA, userB}, oldest first.
	ListBetween(ctx context.Context, userA, userB uuid.UUID) ([]domain.Message, error)
	// ListInvolving returns every message the user sent or received, in no
	// particular order.
	ListInvolving(ctx context.Context, userID uuid.UUID) ([]domain.Message, error)
	// MarkSeen flips the seen flag on unseen messages from sender to receiver.
	MarkSeen(ctx context.Context, senderID, receiverID uuid.UUID) error
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	ListFeed(ctx context.Context, limit int) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error)
	ListReplies(ctx context.Context, parentID uuid.UUID) ([]domain.Post, error)
	GetRepost(ctx context.Context, authorID, parentID uuid.UUID) (*domain.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetLikesCount(ctx context.Context, id uuid.UUID, count int) error
	IncRepostsCount(ctx context.Context, id uuid.UUID, delta int) error
}

type LikeRepository interface {
	Get(ctx context.Context, authorID, postID uuid.UUID) (*domain.Like, error)
	Create(ctx context.Context, like *domain.Like) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByPost(ctx context.Context, postID uuid.UUID) (int, error)
	ListPostIDsLikedBy(ctx context.Context, authorID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error)
}

type BookmarkRepository interface {
	Get(ctx context.Context, userID, postID uuid.UUID) (*domain.Bookmark, error)
	Create(ctx context.Context, bookmark *domain.Bookmark) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPostsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Post, error)
}
