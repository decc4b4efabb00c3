// Package pipeline drives document ingestion: extraction, chunking, batched
// concurrent embedding and checkpointed persistence to the knowledge store.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/pkg/logger"
	"clinidoc-be/pkg/chunker"
	"clinidoc-be/pkg/embedding"
	"clinidoc-be/pkg/lease"
)

type Config struct {
	// BatchSize is both the checkpoint granularity and the embedding
	// concurrency bound within a batch.
	BatchSize int
	// ChunkTimeout bounds a single embedding attempt so one stalled call
	// cannot block a whole batch.
	ChunkTimeout time.Duration
	// MaxChunkRetries bounds retries of a single chunk embedding before the
	// chunk is skipped.
	MaxChunkRetries int
	// MaxStoreRetries bounds retries of a bulk store write before the job
	// fails.
	MaxStoreRetries int
	// RetryBackoff is the base of the exponential backoff between retries.
	RetryBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 25
	}
	if c.ChunkTimeout <= 0 {
		c.ChunkTimeout = 30 * time.Second
	}
	if c.MaxChunkRetries <= 0 {
		c.MaxChunkRetries = 3
	}
	if c.MaxStoreRetries <= 0 {
		c.MaxStoreRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
	return c
}

// run is the mutable in-flight state of one job. The job struct inside is
// owned by the runner goroutine; readers get snapshots under the mutex.
type run struct {
	mu        sync.Mutex
	job       *entity.IngestionJob
	pause     bool
	cancel    bool
	startedAt time.Time
}

// Runner sequences ingestion batches for any number of independent jobs.
// Jobs for different documents run concurrently; two runs for the same job id
// are serialized by the lease.
type Runner struct {
	cfg      Config
	extract  Extractor
	chunker  *chunker.Chunker
	provider embedding.Provider
	store    KnowledgeStore
	jobs     JobStore
	leaser   lease.Leaser
	notifier Notifier
	log      logger.ILogger

	mu     sync.RWMutex
	active map[uuid.UUID]*run
}

func NewRunner(
	cfg Config,
	extract Extractor,
	ch *chunker.Chunker,
	provider embedding.Provider,
	store KnowledgeStore,
	jobs JobStore,
	leaser lease.Leaser,
	notifier Notifier,
	log logger.ILogger,
) *Runner {
	return &Runner{
		cfg:      cfg.withDefaults(),
		extract:  extract,
		chunker:  ch,
		provider: provider,
		store:    store,
		jobs:     jobs,
		leaser:   leaser,
		notifier: notifier,
		log:      log,
		active:   make(map[uuid.UUID]*run),
	}
}

// Run executes (or resumes) one ingestion job to a terminal or parked state.
// Chunk boundaries are recomputed deterministically, so a resumed job skips
// every batch below the persisted checkpoint without re-embedding anything.
func (r *Runner) Run(ctx context.Context, job *entity.IngestionJob, data []byte) error {
	if job.State.Terminal() {
		return ErrJobTerminal
	}

	if err := r.leaser.Acquire(ctx, job.Id); err != nil {
		return err
	}
	defer func() {
		if err := r.leaser.Release(context.Background(), job.Id); err != nil {
			r.log.Warn("Pipeline", "Failed to release job lease", map[string]interface{}{
				"job_id": job.Id, "error": err.Error(),
			})
		}
	}()

	rn := &run{job: job, startedAt: time.Now()}
	r.register(rn)
	defer r.unregister(job.Id)

	if err := r.execute(ctx, rn, data); err != nil {
		r.transition(rn, entity.JobFailed, err.Error())
		return err
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, rn *run, data []byte) error {
	job := rn.job

	// 1. Extract every page in a single pass.
	r.transition(rn, entity.JobExtracting, "")
	pages, err := r.extract.Extract(data)
	if err != nil {
		return fmt.Errorf("extract document: %w", err)
	}
	rn.mu.Lock()
	job.TotalPages = len(pages)
	job.PagesDone = len(pages)
	rn.mu.Unlock()

	// 2. Chunk with page-offset bookkeeping.
	r.transition(rn, entity.JobChunking, "")
	chunks := r.chunker.ChunkPages(pages)
	rn.mu.Lock()
	job.TotalChunks = len(chunks)
	rn.mu.Unlock()

	// 3. Batched concurrent embedding with batch-granular checkpoints.
	r.transition(rn, entity.JobEmbedding, "")

	for start := job.LastCheckpointIndex; start < len(chunks); start += r.cfg.BatchSize {
		// Cancellation and pause are cooperative and only observed between
		// batches; an in-flight batch always finishes. Only an explicit
		// Cancel is terminal; a cancelled ambient context (shutdown) parks
		// the job like a pause so it can be resumed.
		switch {
		case rn.cancelled():
			r.transition(rn, entity.JobCancelled, "")
			return nil
		case ctx.Err() != nil, rn.paused():
			r.transition(rn, entity.JobPaused, "")
			return nil
		}

		end := start + r.cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		if err := r.processBatch(ctx, rn, batch, end); err != nil {
			if ctx.Err() != nil {
				r.transition(rn, entity.JobPaused, "")
				return nil
			}
			return err
		}
	}

	r.transition(rn, entity.JobCompleted, "")
	return nil
}

// processBatch embeds one batch concurrently, writes the successes as a
// single bulk store call and advances the checkpoint to batchEnd. The
// checkpoint never moves unless the whole batch committed.
func (r *Runner) processBatch(ctx context.Context, rn *run, batch []entity.Chunk, batchEnd int) error {
	job := rn.job

	vectors := make([][]float32, len(batch))
	failed := make([]bool, len(batch))

	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vec, err := r.embedWithRetry(ctx, batch[i].Text)
			if err != nil {
				// A chunk that exhausted its retries is skipped, not fatal;
				// the rest of the batch still commits.
				failed[i] = true
				r.log.Warn("Pipeline", "Chunk embedding skipped after retries", map[string]interface{}{
					"job_id": job.Id, "chunk_index": batch[i].Index, "error": err.Error(),
				})
				return
			}
			vectors[i] = vec
		}(i)
	}
	wg.Wait()

	// A context cancelled mid-batch is a shutdown, not a batch of chunk
	// failures: abandon the batch without recording skips or advancing the
	// checkpoint, so a resume replays it in full.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	okChunks := make([]entity.Chunk, 0, len(batch))
	okVectors := make([][]float32, 0, len(batch))
	var skipped []int
	for i := range batch {
		if failed[i] {
			skipped = append(skipped, batch[i].Index)
			continue
		}
		okChunks = append(okChunks, batch[i])
		okVectors = append(okVectors, vectors[i])
	}

	if len(okChunks) > 0 {
		if err := r.writeBatchWithRetry(ctx, job.DocumentId, okChunks, okVectors); err != nil {
			return err
		}
	}

	rn.mu.Lock()
	job.ChunksCommitted += len(okChunks)
	job.EmbeddingsCreated += len(okChunks)
	job.SkippedChunks = append(job.SkippedChunks, skipped...)
	job.LastCheckpointIndex = batchEnd
	snapshot := job.Snapshot()
	rn.mu.Unlock()

	if err := r.jobs.Save(ctx, &snapshot); err != nil {
		return fmt.Errorf("persist checkpoint: %w", err)
	}
	r.notify(snapshot)
	return nil
}

func (r *Runner) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxChunkRetries; attempt++ {
		if attempt > 0 {
			sleepCtx(ctx, r.cfg.RetryBackoff<<(attempt-1))
		}
		attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.ChunkTimeout)
		vec, err := r.provider.Generate(attemptCtx, text)
		cancel()
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (r *Runner) writeBatchWithRetry(ctx context.Context, docID uuid.UUID, chunks []entity.Chunk, vectors [][]float32) error {
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxStoreRetries; attempt++ {
		if attempt > 0 {
			sleepCtx(ctx, r.cfg.RetryBackoff<<(attempt-1))
		}
		// The batch is retried as a unit. The store's per-chunk idempotency
		// makes a retry after a partial write safe.
		_, err := r.store.AddChunksBatch(ctx, docID, chunks, vectors)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreWrite, lastErr)
}

// Pause requests that the job park after its current batch.
func (r *Runner) Pause(jobID uuid.UUID) error {
	rn := r.lookup(jobID)
	if rn == nil {
		return ErrJobNotActive
	}
	rn.mu.Lock()
	rn.pause = true
	rn.mu.Unlock()
	return nil
}

// Cancel requests that the job stop after its current batch. Cancellation is
// "no further batches", never preemptive.
func (r *Runner) Cancel(jobID uuid.UUID) error {
	rn := r.lookup(jobID)
	if rn == nil {
		return ErrJobNotActive
	}
	rn.mu.Lock()
	rn.cancel = true
	rn.mu.Unlock()
	return nil
}

// Progress returns a snapshot of an active run, or ok=false when the job is
// not currently running.
func (r *Runner) Progress(jobID uuid.UUID) (entity.IngestionJob, bool) {
	rn := r.lookup(jobID)
	if rn == nil {
		return entity.IngestionJob{}, false
	}
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return rn.job.Snapshot(), true
}

func (r *Runner) register(rn *run) {
	r.mu.Lock()
	r.active[rn.job.Id] = rn
	r.mu.Unlock()
}

func (r *Runner) unregister(jobID uuid.UUID) {
	r.mu.Lock()
	delete(r.active, jobID)
	r.mu.Unlock()
}

func (r *Runner) lookup(jobID uuid.UUID) *run {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active[jobID]
}

func (rn *run) paused() bool {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return rn.pause
}

func (rn *run) cancelled() bool {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return rn.cancel
}

func (r *Runner) transition(rn *run, state entity.JobState, errMsg string) {
	rn.mu.Lock()
	rn.job.State = state
	rn.job.Error = errMsg
	now := time.Now()
	rn.job.UpdatedAt = &now
	snapshot := rn.job.Snapshot()
	rn.mu.Unlock()

	if err := r.jobs.Save(context.Background(), &snapshot); err != nil {
		r.log.Error("Pipeline", "Failed to persist job state", map[string]interface{}{
			"job_id": snapshot.Id, "state": state, "error": err.Error(),
		})
	}
	r.notify(snapshot)
}

func (r *Runner) notify(job entity.IngestionJob) {
	if r.notifier != nil {
		r.notifier.JobUpdated(job)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
