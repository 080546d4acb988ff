package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is the best-effort per-turn log of the chat endpoint:
// the user's latest message and the (truncated) assistant response.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;not null;index" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Response  string    `gorm:"type:text" json:"response"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
