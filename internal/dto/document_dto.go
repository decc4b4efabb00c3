package dto

import (
	"time"

	"github.com/google/uuid"

	"clinidoc-be/internal/entity"
)

// ExtractDocumentResponse is the structured-extraction output surface:
// per-page text plus the clinical entities pulled from it.
type ExtractDocumentResponse struct {
	DocumentId  uuid.UUID                     `json:"document_id"`
	Filename    string                        `json:"filename"`
	PageCount   int                           `json:"page_count"`
	Pages       []entity.Page                 `json:"pages"`
	Vitals      entity.Vitals                 `json:"vitals"`
	Medications []entity.Medication           `json:"medications"`
	LabResults  map[string]map[string]float64 `json:"lab_results"`
	Diagnoses   []entity.Diagnosis            `json:"diagnoses"`
	Allergies   []entity.Allergy              `json:"allergies"`
	// Cached is true when the result was served from the content-hash cache.
	Cached bool `json:"cached"`
}

type ShowDocumentResponse struct {
	Id          uuid.UUID  `json:"id"`
	Filename    string     `json:"filename"`
	ContentHash string     `json:"content_hash"`
	SizeBytes   int64      `json:"size_bytes"`
	PageCount   int        `json:"page_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
