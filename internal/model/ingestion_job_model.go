package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type IngestionJob struct {
	Id                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId          uuid.UUID `gorm:"type:uuid;not null;index"`
	State               string    `gorm:"size:16;index"`
	TotalChunks         int
	ChunksCommitted     int
	EmbeddingsCreated   int
	LastCheckpointIndex int
	// SkippedChunks is a JSON array of chunk indices that exhausted their
	// embedding retries, kept for later reprocessing.
	SkippedChunks datatypes.JSON
	TotalPages    int
	PagesDone     int
	Error         string
	StartedAt     time.Time
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (IngestionJob) TableName() string {
	return "ingestion_jobs"
}
