package entity

import (
	"time"

	"github.com/google/uuid"
)

// TurnMeta is the per-turn annotation stored alongside an assistant message.
type TurnMeta struct {
	Route        string `json:"route,omitempty"`
	RetryCount   int    `json:"retry_count,omitempty"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
}

type ChatMessage struct {
	Id            uuid.UUID
	Chat          string
	Role          string
	ChatSessionId uuid.UUID
	Meta          *TurnMeta
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
