package contract

import (
	"context"

	"clinidoc-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredChunk wraps a stored chunk with its similarity score.
type ScoredChunk struct {
	Chunk      *entity.Chunk
	DocumentId uuid.UUID
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type KnowledgeChunkRepository interface {
	// AddChunksBatch persists one batch of (chunk, embedding) pairs in a
	// single bulk write. It is idempotent per (document id, chunk index) and
	// returns the number of rows committed.
	AddChunksBatch(ctx context.Context, documentID uuid.UUID, chunks []entity.Chunk, embeddings [][]float32) (int, error)
	// SearchSimilar returns the k nearest chunks to the query embedding,
	// filtered by a minimum similarity threshold.
	SearchSimilar(ctx context.Context, embedding []float32, k int, threshold float64) ([]*ScoredChunk, error)
	CountByDocument(ctx context.Context, documentID uuid.UUID) (int64, error)
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
}
