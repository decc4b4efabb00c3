package pipeline

import (
	"context"

	"github.com/google/uuid"

	"clinidoc-be/internal/entity"
)

// Extractor turns a raw document payload into per-page text.
type Extractor interface {
	Extract(data []byte) ([]entity.Page, error)
}

// ExtractorFunc adapts a plain extraction function to the Extractor port.
type ExtractorFunc func(data []byte) ([]entity.Page, error)

func (f ExtractorFunc) Extract(data []byte) ([]entity.Page, error) {
	return f(data)
}

// JobStore persists checkpoint and state transitions of an ingestion job.
type JobStore interface {
	Save(ctx context.Context, job *entity.IngestionJob) error
}

// KnowledgeStore is the gateway to the external vector store. AddChunksBatch
// must be idempotent per (document id, chunk index): re-submitting an
// already-stored chunk does not duplicate it.
type KnowledgeStore interface {
	AddChunksBatch(ctx context.Context, documentID uuid.UUID, chunks []entity.Chunk, embeddings [][]float32) (int, error)
}

// Notifier receives job lifecycle updates. Implementations fan out to NATS
// and websocket subscribers; a nil Notifier disables notification.
type Notifier interface {
	JobUpdated(job entity.IngestionJob)
}
