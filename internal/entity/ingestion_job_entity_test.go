package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobStateTerminal(t *testing.T) {
	assert.True(t, JobCompleted.Terminal())
	assert.True(t, JobCancelled.Terminal())

	for _, s := range []JobState{JobPending, JobExtracting, JobChunking, JobEmbedding, JobPaused, JobFailed} {
		assert.False(t, s.Terminal(), string(s))
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	job := &IngestionJob{SkippedChunks: []int{3, 7}}
	snap := job.Snapshot()

	job.SkippedChunks[0] = 99
	job.ChunksCommitted = 42

	assert.Equal(t, []int{3, 7}, snap.SkippedChunks)
	assert.Equal(t, 0, snap.ChunksCommitted)
}

func TestProgressPercentage(t *testing.T) {
	job := &IngestionJob{TotalChunks: 0}
	assert.Zero(t, job.ProgressPercentage())

	job = &IngestionJob{TotalChunks: 8, ChunksCommitted: 2}
	assert.InDelta(t, 25.0, job.ProgressPercentage(), 0.001)

	// A completed job always reports 100 even with skipped chunks.
	job = &IngestionJob{State: JobCompleted, TotalChunks: 8, ChunksCommitted: 7}
	assert.Equal(t, 100.0, job.ProgressPercentage())
}

func TestChunksPerSecond(t *testing.T) {
	start := time.Now()
	job := &IngestionJob{StartedAt: start, ChunksCommitted: 50}

	assert.InDelta(t, 5.0, job.ChunksPerSecond(start.Add(10*time.Second)), 0.001)
	assert.Zero(t, job.ChunksPerSecond(start))
}
