package domain

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID           uuid.UUID  `json:"id"`
	AuthorID     uuid.UUID  `json:"author_id"`
	Text         string     `json:"text"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	IsRepost     bool       `json:"is_repost"`
	LikesCount   int        `json:"likes_count"`
	RepostsCount int        `json:"reposts_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	// Joined fields
	AuthorName     string  `json:"author_name,omitempty"`
	AuthorUsername string  `json:"author_username,omitempty"`
	AuthorImage    *string `json:"author_image,omitempty"`
	// Viewer-specific fields, filled by the service layer
	LikedByMe      bool   `json:"liked_by_me"`
	BookmarkedByMe bool   `json:"bookmarked_by_me"`
	Replies        []Post `json:"replies,omitempty"`
}

type Like struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	PostID    uuid.UUID `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Bookmark struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	PostID    uuid.UUID `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
