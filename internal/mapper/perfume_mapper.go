package mapper

import (
	"time"

	"scentence-be/internal/entity"
	"scentence-be/internal/model"
)

type PerfumeMapper struct{}

func NewPerfumeMapper() *PerfumeMapper {
	return &PerfumeMapper{}
}

func (m *PerfumeMapper) ToEntity(p *model.Perfume) *entity.Perfume {
	if p == nil {
		return nil
	}

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Perfume{
		Id:          p.Id,
		Name:        p.Name,
		Brand:       p.Brand,
		Perfumer:    p.Perfumer,
		ReleaseYear: p.ReleaseYear,
		ImageUrl:    p.ImageUrl,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   p.DeletedAt.Valid,
	}
}
