package implementation

import (
	"context"

	"scentence-be/internal/entity"
	"scentence-be/internal/mapper"
	"scentence-be/internal/model"
	"scentence-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type NoteEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteEmbeddingMapper
}

func NewNoteEmbeddingRepository(db *gorm.DB) contract.NoteEmbeddingRepository {
	return &NoteEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteEmbeddingMapper(),
	}
}

func (r *NoteEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.NoteEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.NoteEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.NoteEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}
	// Batching keeps the insert below the postgres parameter limit
	return r.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (r *NoteEmbeddingRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.NoteEmbedding{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NoteEmbeddingRepositoryImpl) FindNotesLike(ctx context.Context, keyword string, limit int) ([]string, error) {
	var notes []string
	err := r.db.WithContext(ctx).
		Model(&model.NoteEmbedding{}).
		Where("note ILIKE ?", "%"+keyword+"%").
		Limit(limit).
		Pluck("note", &notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *NoteEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, exclude []string) ([]string, error) {
	query := r.db.WithContext(ctx).Model(&model.NoteEmbedding{})
	if len(exclude) > 0 {
		query = query.Where("note NOT IN ?", exclude)
	}

	var notes []string
	// <=> is pgvector's cosine distance operator
	err := query.
		Order(gorm.Expr("embedding_value <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Pluck("note", &notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}
