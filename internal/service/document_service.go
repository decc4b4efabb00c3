package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"clinidoc-be/internal/dto"
	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/pkg/logger"
	"clinidoc-be/internal/repository/memory"
	"clinidoc-be/internal/repository/specification"
	"clinidoc-be/internal/repository/unitofwork"
	"clinidoc-be/pkg/clinical"
	"clinidoc-be/pkg/extractor"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentService interface {
	Extract(ctx context.Context, filename string, data []byte) (*dto.ExtractDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.ExtractionCache
	logger     logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	cache *memory.ExtractionCache,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory: uowFactory,
		cache:      cache,
		logger:     log,
	}
}

// Extract parses the uploaded PDF, runs the clinical extraction pass over
// its full text and persists both the payload and the extraction snapshot.
// Re-uploading identical bytes is answered from cache or from the stored
// snapshot without re-parsing.
func (s *documentService) Extract(ctx context.Context, filename string, data []byte) (*dto.ExtractDocumentResponse, error) {
	hash := extractor.ContentHash(data)

	if cached, found := s.cache.Get(hash); found {
		res := *cached
		res.Cached = true
		return &res, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	docRepo := uow.DocumentRepository()

	// Dedup against previously stored documents by payload hash.
	if existing, err := docRepo.FindOne(ctx, specification.ByContentHash{Hash: hash}); err != nil {
		return nil, err
	} else if existing != nil {
		res, err := s.fromStored(ctx, uow, existing)
		if err != nil {
			return nil, err
		}
		res.Cached = true
		s.cache.Save(hash, res)
		return res, nil
	}

	pages, err := extractor.Extract(data)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page.Text)
		sb.WriteString("\n")
	}

	extraction, err := clinical.Extract(sb.String())
	if err != nil {
		return nil, err
	}

	doc := &entity.Document{
		Id:          uuid.New(),
		Filename:    filename,
		ContentHash: hash,
		SizeBytes:   int64(len(data)),
		PageCount:   len(pages),
		CreatedAt:   time.Now(),
	}

	extractionJSON, err := json.Marshal(extraction)
	if err != nil {
		return nil, err
	}

	if err := docRepo.Create(ctx, doc, data, extractionJSON); err != nil {
		return nil, err
	}

	s.logger.Info("DocumentService", "Document extracted", map[string]interface{}{
		"document_id": doc.Id, "filename": filename, "pages": len(pages),
	})

	res := &dto.ExtractDocumentResponse{
		DocumentId:  doc.Id,
		Filename:    doc.Filename,
		PageCount:   doc.PageCount,
		Pages:       pages,
		Vitals:      extraction.Vitals,
		Medications: extraction.Medications,
		LabResults:  extraction.LabResults,
		Diagnoses:   extraction.Diagnoses,
		Allergies:   extraction.Allergies,
	}
	s.cache.Save(hash, res)
	return res, nil
}

// fromStored rebuilds the extraction response of an already-known document
// from its stored snapshot and payload.
func (s *documentService) fromStored(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document) (*dto.ExtractDocumentResponse, error) {
	docRepo := uow.DocumentRepository()

	extractionJSON, err := docRepo.ExtractionJSON(ctx, doc.Id)
	if err != nil {
		return nil, err
	}
	var extraction entity.ClinicalExtraction
	if err := json.Unmarshal(extractionJSON, &extraction); err != nil {
		return nil, err
	}

	payload, err := docRepo.Payload(ctx, doc.Id)
	if err != nil {
		return nil, err
	}
	pages, err := extractor.Extract(payload)
	if err != nil {
		return nil, err
	}

	return &dto.ExtractDocumentResponse{
		DocumentId:  doc.Id,
		Filename:    doc.Filename,
		PageCount:   doc.PageCount,
		Pages:       pages,
		Vitals:      extraction.Vitals,
		Medications: extraction.Medications,
		LabResults:  extraction.LabResults,
		Diagnoses:   extraction.Diagnoses,
		Allergies:   extraction.Allergies,
	}, nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	return &dto.ShowDocumentResponse{
		Id:          doc.Id,
		Filename:    doc.Filename,
		ContentHash: doc.ContentHash,
		SizeBytes:   doc.SizeBytes,
		PageCount:   doc.PageCount,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.KnowledgeChunkRepository().DeleteByDocument(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.cache.Delete(doc.ContentHash)
	return nil
}
