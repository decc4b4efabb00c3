package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinidoc-be/internal/entity"
	"clinidoc-be/pkg/chunker"
	"clinidoc-be/pkg/embedding"
	"clinidoc-be/pkg/lease"
)

// --- fakes ---

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// fakeExtractor returns one synthetic page of n eight-letter words, so a
// ten-word chunk always clears the minimum chunk length.
func fakeExtractor(words int) Extractor {
	fields := make([]string, words)
	for i := range fields {
		fields[i] = fmt.Sprintf("word%04d", i)
	}
	text := strings.Join(fields, " ")
	return ExtractorFunc(func([]byte) ([]entity.Page, error) {
		return []entity.Page{{PageNumber: 1, Text: text, WordCount: words}}, nil
	})
}

type fakeProvider struct {
	mu sync.Mutex
	// failWord makes every chunk containing the word fail permanently.
	failWord string
	calls    int
}

func (p *fakeProvider) Generate(_ context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.failWord != "" && strings.Contains(text, p.failWord) {
		return nil, errors.New("embedding backend unavailable")
	}
	return []float32{float32(len(text)), 1, 2}, nil
}

func (p *fakeProvider) Dimensions() int { return 3 }

// gateProvider blocks the first Generate call until released, giving tests a
// deterministic point to issue Pause while a batch is in flight.
type gateProvider struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGateProvider() *gateProvider {
	return &gateProvider{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (p *gateProvider) Generate(_ context.Context, text string) ([]float32, error) {
	p.once.Do(func() {
		close(p.started)
		<-p.release
	})
	return []float32{float32(len(text))}, nil
}

func (p *gateProvider) Dimensions() int { return 1 }

type fakeStore struct {
	mu       sync.Mutex
	failures int // remaining forced failures
	batches  [][]int
	seen     map[int]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{seen: make(map[int]bool)}
}

func (s *fakeStore) AddChunksBatch(_ context.Context, _ uuid.UUID, chunks []entity.Chunk, embeddings [][]float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(chunks) != len(embeddings) {
		return 0, errors.New("chunk/embedding length mismatch")
	}
	if s.failures != 0 {
		if s.failures > 0 {
			s.failures--
		}
		return 0, errors.New("store unavailable")
	}

	var indices []int
	committed := 0
	for _, c := range chunks {
		indices = append(indices, c.Index)
		if !s.seen[c.Index] {
			s.seen[c.Index] = true
			committed++
		}
	}
	s.batches = append(s.batches, indices)
	return committed, nil
}

func (s *fakeStore) committedIndices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for idx := range s.seen {
		out = append(out, idx)
	}
	return out
}

type fakeJobStore struct {
	mu    sync.Mutex
	saves []entity.IngestionJob
}

func (s *fakeJobStore) Save(_ context.Context, job *entity.IngestionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, job.Snapshot())
	return nil
}

func (s *fakeJobStore) states() []entity.JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.JobState, 0, len(s.saves))
	for _, j := range s.saves {
		out = append(out, j.State)
	}
	return out
}

// --- helpers ---

func testConfig() Config {
	return Config{
		BatchSize:       4,
		ChunkTimeout:    time.Second,
		MaxChunkRetries: 2,
		MaxStoreRetries: 2,
		RetryBackoff:    time.Millisecond,
	}
}

func newTestRunner(extract Extractor, provider embedding.Provider, store KnowledgeStore, jobs JobStore) *Runner {
	return NewRunner(
		testConfig(),
		extract,
		chunker.New(chunker.WithWindow(10), chunker.WithOverlap(0)),
		provider,
		store,
		jobs,
		lease.NewMemoryLeaser(),
		nil,
		nopLogger{},
	)
}

func newJob() *entity.IngestionJob {
	return &entity.IngestionJob{
		Id:         uuid.New(),
		DocumentId: uuid.New(),
		State:      entity.JobPending,
		StartedAt:  time.Now(),
	}
}

// --- tests ---

func TestRunnerCompletesJob(t *testing.T) {
	store := newFakeStore()
	jobs := &fakeJobStore{}
	job := newJob()

	r := newTestRunner(fakeExtractor(100), &fakeProvider{}, store, jobs)
	require.NoError(t, r.Run(context.Background(), job, nil))

	assert.Equal(t, entity.JobCompleted, job.State)
	assert.Equal(t, 10, job.TotalChunks)
	assert.Equal(t, 10, job.ChunksCommitted)
	assert.Equal(t, 10, job.EmbeddingsCreated)
	assert.Equal(t, 10, job.LastCheckpointIndex)
	assert.Empty(t, job.SkippedChunks)
	assert.Len(t, store.committedIndices(), 10)

	// State sequence persisted through the job store.
	states := jobs.states()
	assert.Equal(t, entity.JobExtracting, states[0])
	assert.Equal(t, entity.JobChunking, states[1])
	assert.Equal(t, entity.JobEmbedding, states[2])
	assert.Equal(t, entity.JobCompleted, states[len(states)-1])
}

func TestRunnerCheckpointAdvancesPerBatch(t *testing.T) {
	store := newFakeStore()
	jobs := &fakeJobStore{}
	job := newJob()

	r := newTestRunner(fakeExtractor(100), &fakeProvider{}, store, jobs)
	require.NoError(t, r.Run(context.Background(), job, nil))

	// Batch size 4 over 10 chunks: checkpoints 4, 8, 10, strictly monotonic.
	var checkpoints []int
	last := 0
	for _, saved := range jobs.saves {
		if saved.LastCheckpointIndex != last {
			checkpoints = append(checkpoints, saved.LastCheckpointIndex)
			last = saved.LastCheckpointIndex
		}
		assert.GreaterOrEqual(t, saved.LastCheckpointIndex, 0)
	}
	assert.Equal(t, []int{4, 8, 10}, checkpoints)
}

func TestRunnerResumeSkipsCommittedBatches(t *testing.T) {
	store := newFakeStore()
	jobs := &fakeJobStore{}

	job := newJob()
	job.State = entity.JobPaused
	job.TotalChunks = 10
	job.ChunksCommitted = 8
	job.EmbeddingsCreated = 8
	job.LastCheckpointIndex = 8

	r := newTestRunner(fakeExtractor(100), &fakeProvider{}, store, jobs)
	require.NoError(t, r.Run(context.Background(), job, nil))

	assert.Equal(t, entity.JobCompleted, job.State)
	assert.Equal(t, 10, job.ChunksCommitted)
	// Only the chunks above the checkpoint reach the store.
	assert.ElementsMatch(t, []int{8, 9}, store.committedIndices())
}

func TestRunnerSkipsChunkAfterRetriesExhausted(t *testing.T) {
	store := newFakeStore()
	jobs := &fakeJobStore{}
	job := newJob()

	// word0025 lives in chunk 2 (words 20-29).
	provider := &fakeProvider{failWord: "word0025"}
	r := newTestRunner(fakeExtractor(100), provider, store, jobs)
	require.NoError(t, r.Run(context.Background(), job, nil))

	assert.Equal(t, entity.JobCompleted, job.State)
	assert.Equal(t, []int{2}, job.SkippedChunks)
	assert.Equal(t, 9, job.ChunksCommitted)
	// The batch containing the failure still committed and the checkpoint
	// still reached the end.
	assert.Equal(t, 10, job.LastCheckpointIndex)
	assert.NotContains(t, store.committedIndices(), 2)
}

func TestRunnerStoreFailureFailsJob(t *testing.T) {
	store := newFakeStore()
	store.failures = -1 // fail forever
	jobs := &fakeJobStore{}
	job := newJob()

	r := newTestRunner(fakeExtractor(100), &fakeProvider{}, store, jobs)
	err := r.Run(context.Background(), job, nil)

	require.ErrorIs(t, err, ErrStoreWrite)
	assert.Equal(t, entity.JobFailed, job.State)
	assert.Equal(t, 0, job.LastCheckpointIndex)
	assert.NotEmpty(t, job.Error)
}

func TestRunnerStoreRetryDoesNotDuplicate(t *testing.T) {
	store := newFakeStore()
	store.failures = 1 // first write attempt fails, retry succeeds
	jobs := &fakeJobStore{}
	job := newJob()

	r := newTestRunner(fakeExtractor(100), &fakeProvider{}, store, jobs)
	require.NoError(t, r.Run(context.Background(), job, nil))

	assert.Equal(t, entity.JobCompleted, job.State)
	assert.Equal(t, 10, job.ChunksCommitted)
	assert.Len(t, store.committedIndices(), 10)
}

func TestRunnerRejectsTerminalJob(t *testing.T) {
	job := newJob()
	job.State = entity.JobCompleted

	r := newTestRunner(fakeExtractor(10), &fakeProvider{}, newFakeStore(), &fakeJobStore{})
	assert.ErrorIs(t, r.Run(context.Background(), job, nil), ErrJobTerminal)
}

func TestRunnerLeaseConflict(t *testing.T) {
	leaser := lease.NewMemoryLeaser()
	job := newJob()
	require.NoError(t, leaser.Acquire(context.Background(), job.Id))

	r := NewRunner(
		testConfig(),
		fakeExtractor(100),
		chunker.New(chunker.WithWindow(10), chunker.WithOverlap(0)),
		&fakeProvider{},
		newFakeStore(),
		&fakeJobStore{},
		leaser,
		nil,
		nopLogger{},
	)
	assert.ErrorIs(t, r.Run(context.Background(), job, nil), lease.ErrConflict)
}

func TestRunnerContextCancellationParksJobResumable(t *testing.T) {
	store := newFakeStore()
	job := newJob()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(fakeExtractor(100), &fakeProvider{}, store, &fakeJobStore{})
	require.NoError(t, r.Run(ctx, job, nil))

	// Shutdown is not a user cancel: the job parks paused, never terminal.
	assert.Equal(t, entity.JobPaused, job.State)
	assert.Empty(t, store.committedIndices())

	// A fresh run with a live context picks the job back up.
	require.NoError(t, r.Run(context.Background(), job, nil))
	assert.Equal(t, entity.JobCompleted, job.State)
	assert.Equal(t, 10, job.ChunksCommitted)
}

func TestRunnerShutdownMidBatchRecordsNoSkips(t *testing.T) {
	store := newFakeStore()
	job := newJob()

	provider := newGateProvider()
	r := newTestRunner(fakeExtractor(100), provider, store, &fakeJobStore{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, job, nil) }()

	// Cancel the ambient context while the first batch is embedding, then
	// let the batch finish.
	<-provider.started
	cancel()
	close(provider.release)

	require.NoError(t, <-done)

	assert.Equal(t, entity.JobPaused, job.State)
	assert.Empty(t, job.SkippedChunks)
	assert.Equal(t, 0, job.LastCheckpointIndex)
	assert.Empty(t, store.committedIndices())

	// Resuming replays the abandoned batch in full.
	require.NoError(t, r.Run(context.Background(), job, nil))
	assert.Equal(t, entity.JobCompleted, job.State)
	assert.Empty(t, job.SkippedChunks)
	assert.Len(t, store.committedIndices(), 10)
}

func TestRunnerPauseParksAfterCurrentBatch(t *testing.T) {
	store := newFakeStore()
	jobs := &fakeJobStore{}
	job := newJob()

	provider := newGateProvider()
	r := newTestRunner(fakeExtractor(100), provider, store, jobs)

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background(), job, nil) }()

	// Wait until the first batch is embedding, then request the pause and
	// let the batch finish.
	<-provider.started
	require.NoError(t, r.Pause(job.Id))
	close(provider.release)

	require.NoError(t, <-done)

	assert.Equal(t, entity.JobPaused, job.State)
	assert.Equal(t, 4, job.ChunksCommitted)
	assert.Equal(t, 4, job.LastCheckpointIndex)

	// Resume: a fresh run continues from the checkpoint and completes.
	require.NoError(t, r.Run(context.Background(), job, nil))
	assert.Equal(t, entity.JobCompleted, job.State)
	assert.Equal(t, 10, job.ChunksCommitted)
	assert.Len(t, store.committedIndices(), 10)
}

func TestRunnerCancelStopsPermanently(t *testing.T) {
	store := newFakeStore()
	job := newJob()

	provider := newGateProvider()
	r := newTestRunner(fakeExtractor(100), provider, store, &fakeJobStore{})

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background(), job, nil) }()

	<-provider.started
	require.NoError(t, r.Cancel(job.Id))
	close(provider.release)

	require.NoError(t, <-done)
	assert.Equal(t, entity.JobCancelled, job.State)
	assert.Equal(t, 4, job.ChunksCommitted)

	// A cancelled job can never run again.
	assert.ErrorIs(t, r.Run(context.Background(), job, nil), ErrJobTerminal)
}

func TestRunnerControlsRequireActiveRun(t *testing.T) {
	r := newTestRunner(fakeExtractor(10), &fakeProvider{}, newFakeStore(), &fakeJobStore{})

	assert.ErrorIs(t, r.Pause(uuid.New()), ErrJobNotActive)
	assert.ErrorIs(t, r.Cancel(uuid.New()), ErrJobNotActive)

	_, ok := r.Progress(uuid.New())
	assert.False(t, ok)
}

func TestRunnerProgressSnapshotDuringRun(t *testing.T) {
	store := newFakeStore()
	job := newJob()

	provider := newGateProvider()
	r := newTestRunner(fakeExtractor(100), provider, store, &fakeJobStore{})

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background(), job, nil) }()

	<-provider.started
	snapshot, ok := r.Progress(job.Id)
	require.True(t, ok)
	assert.Equal(t, entity.JobEmbedding, snapshot.State)
	assert.Equal(t, 10, snapshot.TotalChunks)

	close(provider.release)
	require.NoError(t, <-done)
}
