package implementation

import (
	"context"

	"scentence-be/internal/entity"
	"scentence-be/internal/mapper"
	"scentence-be/internal/model"
	"scentence-be/internal/repository/contract"
	"scentence-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenUsageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewTokenUsageRepository(db *gorm.DB) contract.TokenUsageRepository {
	return &TokenUsageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *TokenUsageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TokenUsageRepositoryImpl) Create(ctx context.Context, usage *entity.TokenUsage) error {
	m := r.mapper.TokenUsageToModel(usage)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*usage = *r.mapper.TokenUsageToEntity(m)
	return nil
}

func (r *TokenUsageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TokenUsage, error) {
	var models []*model.TokenUsage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.TokenUsage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TokenUsageToEntity(m)
	}
	return entities, nil
}

func (r *TokenUsageRepositoryImpl) SumBySessionId(ctx context.Context, sessionId uuid.UUID) (*contract.UsageTotals, error) {
	var totals contract.UsageTotals
	err := r.db.WithContext(ctx).
		Model(&model.TokenUsage{}).
		Select("COALESCE(SUM(input_tokens), 0) AS input_tokens, COALESCE(SUM(output_tokens), 0) AS output_tokens").
		Where("chat_session_id = ?", sessionId).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
