package lease

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLeaserAcquireRelease(t *testing.T) {
	l := NewMemoryLeaser()
	ctx := context.Background()
	jobID := uuid.New()

	require.NoError(t, l.Acquire(ctx, jobID))
	assert.ErrorIs(t, l.Acquire(ctx, jobID), ErrConflict)

	require.NoError(t, l.Release(ctx, jobID))
	assert.NoError(t, l.Acquire(ctx, jobID))
}

func TestMemoryLeaserIndependentJobs(t *testing.T) {
	l := NewMemoryLeaser()
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx, uuid.New()))
	require.NoError(t, l.Acquire(ctx, uuid.New()))
}

func TestMemoryLeaserReleaseUnheldIsNoop(t *testing.T) {
	l := NewMemoryLeaser()
	assert.NoError(t, l.Release(context.Background(), uuid.New()))
}

func TestMemoryLeaserSingleWinnerUnderContention(t *testing.T) {
	l := NewMemoryLeaser()
	ctx := context.Background()
	jobID := uuid.New()

	const attempts = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(ctx, jobID); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
}
