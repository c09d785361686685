package entity

import (
	"github.com/google/uuid"
)

type NoteEmbedding struct {
	Id        uuid.UUID
	Note      string
	Embedding []float32
}
