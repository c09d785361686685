package dto

import "github.com/google/uuid"

// PublishTurnUsageMessage is the payload published after every completed
// turn so token accounting is persisted off the request path.
type PublishTurnUsageMessage struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Route         string    `json:"route"`
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
}
