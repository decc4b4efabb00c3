package contract

import (
	"context"

	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/repository/specification"
)

type IngestionJobRepository interface {
	Create(ctx context.Context, job *entity.IngestionJob) error
	// Save upserts the full job row; the pipeline calls it on every state
	// transition and checkpoint advance.
	Save(ctx context.Context, job *entity.IngestionJob) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IngestionJob, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IngestionJob, error)
}
