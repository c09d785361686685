package model

import (
	"time"

	"github.com/google/uuid"
)

type TokenUsage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Route         string    `gorm:"type:varchar(50)"`
	InputTokens   int       `gorm:"default:0"`
	OutputTokens  int       `gorm:"default:0"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (TokenUsage) TableName() string {
	return "token_usages"
}
