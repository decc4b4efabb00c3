package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobState string

const (
	JobPending    JobState = "pending"
	JobExtracting JobState = "extracting"
	JobChunking   JobState = "chunking"
	JobEmbedding  JobState = "embedding"
	JobPaused     JobState = "paused"
	JobCompleted  JobState = "completed"
	JobCancelled  JobState = "cancelled"
	JobFailed     JobState = "failed"
)

// Terminal reports whether the job can never advance again.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobCancelled
}

// IngestionJob is owned exclusively by the pipeline runner holding the job
// lease. External readers only ever see snapshot copies.
type IngestionJob struct {
	Id                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId          uuid.UUID `gorm:"type:uuid;index"`
	State               JobState
	TotalChunks         int
	ChunksCommitted     int
	EmbeddingsCreated   int
	LastCheckpointIndex int
	// Chunk indices that exhausted their embedding retries. They are flagged
	// here for later reprocessing instead of failing the batch.
	SkippedChunks []int
	TotalPages    int
	PagesDone     int
	Error         string
	StartedAt     time.Time
	UpdatedAt     *time.Time
}

// Snapshot returns an immutable copy safe to hand to concurrent readers.
func (j *IngestionJob) Snapshot() IngestionJob {
	cp := *j
	cp.SkippedChunks = append([]int(nil), j.SkippedChunks...)
	return cp
}

// ProgressPercentage is derived telemetry, not part of the checkpoint state.
func (j *IngestionJob) ProgressPercentage() float64 {
	if j.State == JobCompleted {
		return 100
	}
	if j.TotalChunks == 0 {
		return 0
	}
	return float64(j.ChunksCommitted) / float64(j.TotalChunks) * 100
}

// ChunksPerSecond reports committed throughput over the job's wall time.
func (j *IngestionJob) ChunksPerSecond(now time.Time) float64 {
	elapsed := now.Sub(j.StartedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(j.ChunksCommitted) / elapsed
}
