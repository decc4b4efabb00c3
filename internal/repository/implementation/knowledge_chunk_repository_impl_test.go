package implementation

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/model"
	"clinidoc-be/pkg/database"
)

// These tests need a running Postgres with the pgvector extension and the
// schema migrated (cmd/migrate). They are skipped otherwise.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("DB_CONNECTION_STRING not set")
	}
	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	return db
}

func basisVector(axis int) []float32 {
	v := make([]float32, 768)
	v[axis] = 1
	return v
}

func testChunks(n int) ([]entity.Chunk, [][]float32) {
	chunks := make([]entity.Chunk, n)
	vectors := make([][]float32, n)
	for i := range chunks {
		chunks[i] = entity.Chunk{
			Index:     i,
			Text:      "patient presents with stable vitals and no acute distress",
			StartPage: 1,
			EndPage:   1,
			WordCount: 9,
		}
		vectors[i] = basisVector(i)
	}
	return chunks, vectors
}

func cleanupChunks(t *testing.T, db *gorm.DB, docID uuid.UUID) {
	t.Helper()
	t.Cleanup(func() {
		db.Unscoped().Where("document_id = ?", docID).Delete(&model.KnowledgeChunk{})
	})
}

func TestAddChunksBatchIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewKnowledgeChunkRepository(db)
	ctx := context.Background()

	docID := uuid.New()
	cleanupChunks(t, db, docID)
	chunks, vectors := testChunks(4)

	committed, err := repo.AddChunksBatch(ctx, docID, chunks, vectors)
	require.NoError(t, err)
	assert.Equal(t, 4, committed)

	// Re-submitting the same batch inserts nothing new.
	committed, err = repo.AddChunksBatch(ctx, docID, chunks, vectors)
	require.NoError(t, err)
	assert.Equal(t, 0, committed)

	count, err := repo.CountByDocument(ctx, docID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}

func TestAddChunksBatchRejectsMismatch(t *testing.T) {
	db := testDB(t)
	repo := NewKnowledgeChunkRepository(db)

	chunks, vectors := testChunks(3)
	_, err := repo.AddChunksBatch(context.Background(), uuid.New(), chunks, vectors[:2])
	assert.Error(t, err)
}

func TestSearchSimilarOrdersAndFilters(t *testing.T) {
	db := testDB(t)
	repo := NewKnowledgeChunkRepository(db)
	ctx := context.Background()

	docID := uuid.New()
	cleanupChunks(t, db, docID)
	chunks, vectors := testChunks(3)
	_, err := repo.AddChunksBatch(ctx, docID, chunks, vectors)
	require.NoError(t, err)

	// Querying with the axis-0 basis vector: chunk 0 is identical
	// (similarity 1), the orthogonal chunks score 0 and fall under the
	// threshold.
	results, err := repo.SearchSimilar(ctx, basisVector(0), 10, 0.5)
	require.NoError(t, err)

	var mine []*entityMatch
	for _, r := range results {
		if r.DocumentId == docID {
			mine = append(mine, &entityMatch{index: r.Chunk.Index, similarity: r.Similarity})
		}
	}
	require.Len(t, mine, 1)
	assert.Equal(t, 0, mine[0].index)
	assert.InDelta(t, 1.0, mine[0].similarity, 0.001)
}

type entityMatch struct {
	index      int
	similarity float64
}

func TestDeleteByDocumentRemovesAllChunks(t *testing.T) {
	db := testDB(t)
	repo := NewKnowledgeChunkRepository(db)
	ctx := context.Background()

	docID := uuid.New()
	cleanupChunks(t, db, docID)
	chunks, vectors := testChunks(2)
	_, err := repo.AddChunksBatch(ctx, docID, chunks, vectors)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByDocument(ctx, docID))

	count, err := repo.CountByDocument(ctx, docID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
