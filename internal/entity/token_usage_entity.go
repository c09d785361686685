package entity

import (
	"time"

	"github.com/google/uuid"
)

type TokenUsage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Route         string
	InputTokens   int
	OutputTokens  int
	CreatedAt     time.Time
}
