package contract

import (
	"context"

	"scentence-be/internal/entity"
	"scentence-be/internal/repository/specification"

	"github.com/google/uuid"
)

// CatalogFilter is one resolved conjunctive search constraint. Scalar columns
// carry a single value; the multi-valued note column may carry several,
// matched as an IN set.
type CatalogFilter struct {
	Column string // brand | perfume_name | note | season | gender | occasion | accord
	Values []string
}

// NotePosition is one note of a perfume with its pyramid placement.
type NotePosition struct {
	Note     string
	NoteType string // top | middle | base
	Position int
}

// PerfumeAttributes bundles the multi-valued attribute rows of one perfume
// for bulk replacement during catalog loading.
type PerfumeAttributes struct {
	Notes     []NotePosition
	Accords   []entity.WeightedValue
	Seasons   []entity.WeightedValue
	Genders   []entity.WeightedValue
	Occasions []entity.WeightedValue
}

type PerfumeRepository interface {
	Create(ctx context.Context, perfume *entity.Perfume) error
	ReplaceAttributes(ctx context.Context, perfumeId uuid.UUID, attrs *PerfumeAttributes) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Perfume, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchAggregated applies every filter conjunctively and returns up to
	// limit matched records with their multi-valued attributes collected per
	// record. orderPolicy selects result ordering (random | relevance).
	SearchAggregated(ctx context.Context, filters []CatalogFilter, orderPolicy string, limit int) ([]*entity.PerfumeAggregate, error)

	// FindCanonicalName resolves a fuzzy brand or perfume name to its stored
	// form via case-insensitive substring match. Returns "" when no row matches.
	FindCanonicalName(ctx context.Context, column string, keyword string) (string, error)

	// DistinctAttributeValues snapshots the currently valid categorical filter
	// values, keyed SEASONS / GENDERS / OCCASIONS / ACCORDS.
	DistinctAttributeValues(ctx context.Context) (map[string][]string, error)
}
