package unitofwork

import (
	"context"

	"scentence-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PerfumeRepository() contract.PerfumeRepository
	NoteEmbeddingRepository() contract.NoteEmbeddingRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	TokenUsageRepository() contract.TokenUsageRepository
}
