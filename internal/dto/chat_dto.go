package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID    `json:"id"`
	Role      string       `json:"role"`
	Chat      string       `json:"chat"`
	Meta      *TurnMetaDTO `json:"meta,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type TurnMetaDTO struct {
	Route        string `json:"route,omitempty"`
	RetryCount   int    `json:"retry_count,omitempty"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Chat          string    `json:"chat" validate:"required"`
}

// StreamEvent is one server-sent event emitted while a turn is processed.
// Type is "log" for progress lines, "answer" for the final response and
// "error" for failures.
type StreamEvent struct {
	Type    string        `json:"type"`
	Content string        `json:"content"`
	Usage   *TurnUsageDTO `json:"usage,omitempty"`
}

type TurnUsageDTO struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type GetSessionUsageResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
}
