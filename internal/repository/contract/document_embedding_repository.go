package contract

import (
	"context"

	"nextmind-agent-be/internal/entity"
)

// ScoredChunk is a retrieval hit with its cosine similarity.
type ScoredChunk struct {
	Chunk entity.DocumentEmbedding
	Score float64
}

type DocumentEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.DocumentEmbedding, chunkIndex int) error
	DeleteBySource(ctx context.Context, source string) error
	// SearchSimilar returns up to k chunks ordered by similarity desc,
	// optionally restricted to one metadata type, keeping only hits at or
	// above scoreThreshold.
	SearchSimilar(ctx context.Context, embedding []float32, k int, docType string, scoreThreshold float64) ([]ScoredChunk, error)
	Count(ctx context.Context) (int64, error)
}
