package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Perfume struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `gorm:"type:varchar(255);not null;index"`
	Brand       string         `gorm:"type:varchar(255);not null;index"`
	Perfumer    string         `gorm:"type:varchar(255)"`
	ReleaseYear int            `gorm:"default:0"`
	ImageUrl    string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Perfume) TableName() string {
	return "perfumes"
}

type PerfumeNote struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PerfumeId uuid.UUID `gorm:"type:uuid;not null;index"`
	Note      string    `gorm:"type:varchar(255);not null;index"`
	NoteType  string    `gorm:"type:varchar(50)"` // top | middle | base
	Position  int       `gorm:"default:0"`        // 0-based order within its type
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PerfumeNote) TableName() string {
	return "perfume_notes"
}

type PerfumeAccord struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PerfumeId uuid.UUID `gorm:"type:uuid;not null;index"`
	Accord    string    `gorm:"type:varchar(100);not null;index"`
	Votes     int       `gorm:"default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PerfumeAccord) TableName() string {
	return "perfume_accords"
}

type PerfumeSeason struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PerfumeId uuid.UUID `gorm:"type:uuid;not null;index"`
	Season    string    `gorm:"type:varchar(50);not null;index"`
	Votes     int       `gorm:"default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PerfumeSeason) TableName() string {
	return "perfume_seasons"
}

type PerfumeAudience struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PerfumeId uuid.UUID `gorm:"type:uuid;not null;index"`
	Audience  string    `gorm:"type:varchar(50);not null;index"`
	Votes     int       `gorm:"default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PerfumeAudience) TableName() string {
	return "perfume_audiences"
}

type PerfumeOccasion struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PerfumeId uuid.UUID `gorm:"type:uuid;not null;index"`
	Occasion  string    `gorm:"type:varchar(100);not null;index"`
	Votes     int       `gorm:"default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PerfumeOccasion) TableName() string {
	return "perfume_occasions"
}
