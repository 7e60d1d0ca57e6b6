package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single directed text from one user to another. Once stored,
// only the seen flag may change.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Text       string    `json:"text"`
	Seen       bool      `json:"seen"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	// Joined fields
	SenderName     string  `json:"sender_name,omitempty"`
	SenderUsername string  `json:"sender_username,omitempty"`
	SenderImage    *string `json:"sender_image,omitempty"`
}
