package contract

import (
	"context"

	"scentence-be/internal/entity"
	"scentence-be/internal/repository/specification"

	"github.com/google/uuid"
)

// UsageTotals is the accumulated token cost of one session.
type UsageTotals struct {
	InputTokens  int
	OutputTokens int
}

type TokenUsageRepository interface {
	Create(ctx context.Context, usage *entity.TokenUsage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TokenUsage, error)
	SumBySessionId(ctx context.Context, sessionId uuid.UUID) (*UsageTotals, error)
}
