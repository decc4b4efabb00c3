// Package lease serializes pipeline runs: at most one active run may hold a
// given job id at a time.
package lease

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrConflict is returned when a second run is attempted against a job id
// that is already leased.
var ErrConflict = errors.New("ingestion job already has an active run")

// Leaser grants an exclusive lease on a job id for the duration of one
// pipeline run.
type Leaser interface {
	// Acquire claims the lease. It fails fast with ErrConflict when the job
	// id is already held.
	Acquire(ctx context.Context, jobID uuid.UUID) error
	// Release frees the lease. Releasing an unheld lease is a no-op.
	Release(ctx context.Context, jobID uuid.UUID) error
}
