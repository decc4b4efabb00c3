package dto

import (
	"github.com/google/uuid"
)

type StartIngestionRequest struct {
	DocumentId uuid.UUID `json:"document_id" validate:"required"`
}

type StartIngestionResponse struct {
	JobId uuid.UUID `json:"job_id"`
}

// IngestionStatusResponse is the read-only telemetry surface of a job.
type IngestionStatusResponse struct {
	Id                 uuid.UUID `json:"id"`
	DocumentId         uuid.UUID `json:"document_id"`
	Status             string    `json:"status"`
	ProgressPercentage float64   `json:"progress_percentage"`
	PagesProcessed     int       `json:"pages_processed"`
	TotalPages         int       `json:"total_pages"`
	TotalChunks        int       `json:"total_chunks"`
	ChunksCommitted    int       `json:"chunks_committed"`
	EmbeddingsCreated  int       `json:"embeddings_created"`
	ChunksPerSecond    float64   `json:"chunks_per_second"`
	SkippedChunks      []int     `json:"skipped_chunks,omitempty"`
	Error              string    `json:"error,omitempty"`
}

// PublishIngestDocumentMessage is the watermill payload that triggers the
// pipeline for an uploaded document.
type PublishIngestDocumentMessage struct {
	JobId      uuid.UUID `json:"job_id"`
	DocumentId uuid.UUID `json:"document_id"`
}
