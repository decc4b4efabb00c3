package unitofwork

import (
	"context"

	"clinidoc-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	IngestionJobRepository() contract.IngestionJobRepository
	KnowledgeChunkRepository() contract.KnowledgeChunkRepository
}
