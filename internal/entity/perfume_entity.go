package entity

import (
	"time"

	"github.com/google/uuid"
)

type Perfume struct {
	Id          uuid.UUID
	Name        string
	Brand       string
	Perfumer    string
	ReleaseYear int
	ImageUrl    string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

// WeightedValue is one vote-weighted attribute value of a catalog record.
type WeightedValue struct {
	Value string
	Votes int
}

// PerfumeAggregate is a matched catalog record with its multi-valued
// attributes collected per record. Attribute slices carry raw vote weights;
// dominance filtering happens downstream.
type PerfumeAggregate struct {
	Id        uuid.UUID
	Name      string
	Brand     string
	Notes     []string
	Accords   []WeightedValue
	Seasons   []WeightedValue
	Genders   []WeightedValue
	Occasions []WeightedValue
}
