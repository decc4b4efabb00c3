package implementation

import (
	"context"
	"fmt"

	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/model"
	"clinidoc-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KnowledgeChunkRepositoryImpl struct {
	db *gorm.DB
}

func NewKnowledgeChunkRepository(db *gorm.DB) contract.KnowledgeChunkRepository {
	return &KnowledgeChunkRepositoryImpl{db: db}
}

func (r *KnowledgeChunkRepositoryImpl) AddChunksBatch(ctx context.Context, documentID uuid.UUID, chunks []entity.Chunk, embeddings [][]float32) (int, error) {
	if len(chunks) != len(embeddings) {
		return 0, fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	models := make([]*model.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		models[i] = &model.KnowledgeChunk{
			Id:             uuid.New(),
			DocumentId:     documentID,
			ChunkIndex:     c.Index,
			Text:           c.Text,
			EmbeddingValue: pgvector.NewVector(embeddings[i]),
			StartPage:      c.StartPage,
			EndPage:        c.EndPage,
			WordCount:      c.WordCount,
		}
	}

	// DO NOTHING on the (document_id, chunk_index) key makes batch retries
	// after a partial write idempotent: already-stored chunks are skipped.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}, {Name: "chunk_index"}},
			DoNothing: true,
		}).
		Create(models)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *KnowledgeChunkRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, k int, threshold float64) ([]*contract.ScoredChunk, error) {
	if k <= 0 {
		k = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding_value <=> query_vector) recovers the similarity.
	type result struct {
		model.KnowledgeChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("knowledge_chunks").
		Select("knowledge_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(k).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChunk{
			Chunk: &entity.Chunk{
				Index:     res.ChunkIndex,
				Text:      res.Text,
				StartPage: res.StartPage,
				EndPage:   res.EndPage,
				WordCount: res.WordCount,
			},
			DocumentId: res.DocumentId,
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *KnowledgeChunkRepositoryImpl) CountByDocument(ctx context.Context, documentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.KnowledgeChunk{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}

func (r *KnowledgeChunkRepositoryImpl) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&model.KnowledgeChunk{}).Error
}
