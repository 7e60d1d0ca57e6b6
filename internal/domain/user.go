package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Image        *string   `json:"image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the projection of a user shown to other users: display
// fields only, no email or account metadata.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Image    *string   `json:"image,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Image:    u.Image,
	}
}
