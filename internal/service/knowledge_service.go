package service

import (
	"context"

	"clinidoc-be/internal/dto"
	"clinidoc-be/internal/pkg/logger"
	"clinidoc-be/internal/repository/unitofwork"
	"clinidoc-be/pkg/embedding"
)

const (
	defaultSearchLimit     = 10
	defaultSearchThreshold = 0.35
)

type IKnowledgeService interface {
	Search(ctx context.Context, query string, limit int, threshold float64) ([]*dto.KnowledgeSearchResponse, error)
}

type knowledgeService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	logger            logger.ILogger
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

// Search embeds the query and returns the nearest stored chunks by cosine
// similarity, best match first.
func (s *knowledgeService) Search(ctx context.Context, query string, limit int, threshold float64) ([]*dto.KnowledgeSearchResponse, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if threshold <= 0 {
		threshold = defaultSearchThreshold
	}

	vec, err := s.embeddingProvider.Generate(ctx, query)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.KnowledgeChunkRepository().SearchSimilar(ctx, vec, limit, threshold)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.KnowledgeSearchResponse, 0, len(scored))
	for _, sc := range scored {
		results = append(results, &dto.KnowledgeSearchResponse{
			DocumentId: sc.DocumentId,
			ChunkIndex: sc.Chunk.Index,
			Text:       sc.Chunk.Text,
			StartPage:  sc.Chunk.StartPage,
			EndPage:    sc.Chunk.EndPage,
			Similarity: sc.Similarity,
		})
	}

	s.logger.Debug("KnowledgeService", "Semantic search executed", map[string]interface{}{
		"results": len(results), "limit": limit,
	})
	return results, nil
}
