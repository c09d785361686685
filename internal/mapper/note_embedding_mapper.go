package mapper

import (
	"scentence-be/internal/entity"
	"scentence-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type NoteEmbeddingMapper struct{}

func NewNoteEmbeddingMapper() *NoteEmbeddingMapper {
	return &NoteEmbeddingMapper{}
}

func (m *NoteEmbeddingMapper) ToEntity(n *model.NoteEmbedding) *entity.NoteEmbedding {
	if n == nil {
		return nil
	}
	return &entity.NoteEmbedding{
		Id:        n.Id,
		Note:      n.Note,
		Embedding: n.EmbeddingValue.Slice(),
	}
}

func (m *NoteEmbeddingMapper) ToModel(n *entity.NoteEmbedding) *model.NoteEmbedding {
	if n == nil {
		return nil
	}
	return &model.NoteEmbedding{
		Id:             n.Id,
		Note:           n.Note,
		EmbeddingValue: pgvector.NewVector(n.Embedding),
	}
}
