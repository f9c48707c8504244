package mapper

import (
	"encoding/json"

	"nextmind-agent-be/internal/entity"
	"nextmind-agent-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentEmbeddingMapper struct{}

func NewDocumentEmbeddingMapper() *DocumentEmbeddingMapper {
	return &DocumentEmbeddingMapper{}
}

func (m *DocumentEmbeddingMapper) ToEntity(d *model.DocumentEmbedding) *entity.DocumentEmbedding {
	if d == nil {
		return nil
	}
	return &entity.DocumentEmbedding{
		Id:        d.Id,
		Content:   d.Document,
		Type:      d.DocType,
		Source:    d.Source,
		Embedding: d.EmbeddingValue.Slice(),
		CreatedAt: d.CreatedAt,
	}
}

func (m *DocumentEmbeddingMapper) ToModel(d *entity.DocumentEmbedding, chunkIndex int) *model.DocumentEmbedding {
	if d == nil {
		return nil
	}
	metaBytes, _ := json.Marshal(map[string]string{"type": d.Type, "source": d.Source})
	meta := datatypes.JSON(metaBytes)
	return &model.DocumentEmbedding{
		Id:             d.Id,
		Document:       d.Content,
		EmbeddingValue: pgvector.NewVector(d.Embedding),
		Metadata:       meta,
		DocType:        d.Type,
		Source:         d.Source,
		ChunkIndex:     chunkIndex,
	}
}
