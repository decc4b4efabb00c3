package contract

import (
	"context"

	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	// Create stores the document row including its raw payload and the
	// extraction snapshot JSON.
	Create(ctx context.Context, document *entity.Document, content []byte, extractionJSON []byte) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	// Payload returns the immutable raw bytes of a stored document.
	Payload(ctx context.Context, id uuid.UUID) ([]byte, error)
	// ExtractionJSON returns the stored ClinicalExtractionResult snapshot.
	ExtractionJSON(ctx context.Context, id uuid.UUID) ([]byte, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
