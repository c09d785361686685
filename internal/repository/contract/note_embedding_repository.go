package contract

import (
	"context"

	"scentence-be/internal/entity"
)

type NoteEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.NoteEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.NoteEmbedding) error
	Count(ctx context.Context) (int64, error)

	// FindNotesLike returns stored note terms matching the keyword as a
	// case-insensitive substring, up to limit.
	FindNotesLike(ctx context.Context, keyword string, limit int) ([]string, error)

	// SearchSimilar returns the note terms nearest to the query vector by
	// cosine distance, skipping any term in exclude.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, exclude []string) ([]string, error)
}
