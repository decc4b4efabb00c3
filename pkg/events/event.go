package events

import (
	"time"

	"clinidoc-be/internal/entity"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "INGESTION_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Ingestion lifecycle event codes.
const (
	IngestionStarted      = "INGESTION_STARTED"
	IngestionStateChanged = "INGESTION_STATE_CHANGED"
	IngestionCompleted    = "INGESTION_COMPLETED"
	IngestionFailed       = "INGESTION_FAILED"
)

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewIngestionEvent builds the lifecycle event matching the job's state.
func NewIngestionEvent(job entity.IngestionJob) Event {
	eventType := IngestionStateChanged
	switch job.State {
	case entity.JobExtracting:
		if job.ChunksCommitted == 0 {
			eventType = IngestionStarted
		}
	case entity.JobCompleted:
		eventType = IngestionCompleted
	case entity.JobFailed:
		eventType = IngestionFailed
	}

	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"job_id":             job.Id.String(),
			"document_id":        job.DocumentId.String(),
			"state":              string(job.State),
			"total_chunks":       job.TotalChunks,
			"chunks_committed":   job.ChunksCommitted,
			"embeddings_created": job.EmbeddingsCreated,
			"checkpoint_index":   job.LastCheckpointIndex,
			"error":              job.Error,
		},
		OccurredAt: time.Now(),
	}
}
