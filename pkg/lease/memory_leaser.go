package lease

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryLeaser is a process-local leaser for single-instance deployments and
// tests.
type MemoryLeaser struct {
	mu   sync.Mutex
	held map[uuid.UUID]bool
}

func NewMemoryLeaser() *MemoryLeaser {
	return &MemoryLeaser{held: make(map[uuid.UUID]bool)}
}

func (l *MemoryLeaser) Acquire(_ context.Context, jobID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[jobID] {
		return ErrConflict
	}
	l.held[jobID] = true
	return nil
}

func (l *MemoryLeaser) Release(_ context.Context, jobID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, jobID)
	return nil
}
