package service

import (
	"context"
	"encoding/json"
	"time"

	"clinidoc-be/internal/dto"
	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/pkg/logger"
	"clinidoc-be/internal/repository/specification"
	"clinidoc-be/internal/repository/unitofwork"
	"clinidoc-be/pkg/pipeline"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IIngestionService interface {
	Start(ctx context.Context, req *dto.StartIngestionRequest) (*dto.StartIngestionResponse, error)
	Status(ctx context.Context, jobID uuid.UUID) (*dto.IngestionStatusResponse, error)
	Pause(ctx context.Context, jobID uuid.UUID) error
	Resume(ctx context.Context, jobID uuid.UUID) error
	Cancel(ctx context.Context, jobID uuid.UUID) error
}

type ingestionService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	runner           *pipeline.Runner
	logger           logger.ILogger
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	runner *pipeline.Runner,
	log logger.ILogger,
) IIngestionService {
	return &ingestionService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		runner:           runner,
		logger:           log,
	}
}

// Start creates a pending job for the document and hands it to the async
// consumer. The HTTP call returns before any pipeline work happens.
func (s *ingestionService) Start(ctx context.Context, req *dto.StartIngestionRequest) (*dto.StartIngestionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.DocumentId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	job := &entity.IngestionJob{
		Id:         uuid.New(),
		DocumentId: doc.Id,
		State:      entity.JobPending,
		TotalPages: doc.PageCount,
		StartedAt:  time.Now(),
	}
	if err := uow.IngestionJobRepository().Create(ctx, job); err != nil {
		return nil, err
	}

	if err := s.enqueue(ctx, job.Id, doc.Id); err != nil {
		return nil, err
	}

	s.logger.Info("IngestionService", "Ingestion job queued", map[string]interface{}{
		"job_id": job.Id, "document_id": doc.Id,
	})
	return &dto.StartIngestionResponse{JobId: job.Id}, nil
}

// Status prefers the live in-memory snapshot of an active run and falls back
// to the persisted row for parked and terminal jobs.
func (s *ingestionService) Status(ctx context.Context, jobID uuid.UUID) (*dto.IngestionStatusResponse, error) {
	if snapshot, ok := s.runner.Progress(jobID); ok {
		return statusFromJob(&snapshot), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.IngestionJobRepository().FindOne(ctx, specification.ByID{ID: jobID})
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Ingestion job not found")
	}
	return statusFromJob(job), nil
}

// Pause parks an active run after its current batch. Only running jobs can
// be paused.
func (s *ingestionService) Pause(ctx context.Context, jobID uuid.UUID) error {
	return s.runner.Pause(jobID)
}

// Resume re-enqueues a paused or failed job. The pipeline recomputes chunks
// deterministically and continues from the persisted checkpoint.
func (s *ingestionService) Resume(ctx context.Context, jobID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.IngestionJobRepository().FindOne(ctx, specification.ByID{ID: jobID})
	if err != nil {
		return err
	}
	if job == nil {
		return fiber.NewError(fiber.StatusNotFound, "Ingestion job not found")
	}
	if job.State.Terminal() {
		return pipeline.ErrJobTerminal
	}
	if job.State != entity.JobPaused && job.State != entity.JobFailed {
		return fiber.NewError(fiber.StatusConflict, "Job is not paused")
	}

	return s.enqueue(ctx, job.Id, job.DocumentId)
}

// Cancel stops the job permanently. An active run stops after its current
// batch; a parked job is cancelled directly in the store.
func (s *ingestionService) Cancel(ctx context.Context, jobID uuid.UUID) error {
	if err := s.runner.Cancel(jobID); err == nil {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.IngestionJobRepository()
	job, err := repo.FindOne(ctx, specification.ByID{ID: jobID})
	if err != nil {
		return err
	}
	if job == nil {
		return fiber.NewError(fiber.StatusNotFound, "Ingestion job not found")
	}
	if job.State.Terminal() {
		return pipeline.ErrJobTerminal
	}

	job.State = entity.JobCancelled
	now := time.Now()
	job.UpdatedAt = &now
	return repo.Save(ctx, job)
}

func (s *ingestionService) enqueue(ctx context.Context, jobID, documentID uuid.UUID) error {
	payload, err := json.Marshal(dto.PublishIngestDocumentMessage{
		JobId:      jobID,
		DocumentId: documentID,
	})
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payload)
}

func statusFromJob(job *entity.IngestionJob) *dto.IngestionStatusResponse {
	return &dto.IngestionStatusResponse{
		Id:                 job.Id,
		DocumentId:         job.DocumentId,
		Status:             string(job.State),
		ProgressPercentage: job.ProgressPercentage(),
		PagesProcessed:     job.PagesDone,
		TotalPages:         job.TotalPages,
		TotalChunks:        job.TotalChunks,
		ChunksCommitted:    job.ChunksCommitted,
		EmbeddingsCreated:  job.EmbeddingsCreated,
		ChunksPerSecond:    job.ChunksPerSecond(time.Now()),
		SkippedChunks:      job.SkippedChunks,
		Error:              job.Error,
	}
}
