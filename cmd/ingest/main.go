package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clinidoc-be/internal/config"
	"clinidoc-be/internal/entity"
	"clinidoc-be/internal/repository/unitofwork"
	"clinidoc-be/pkg/chunker"
	"clinidoc-be/pkg/clinical"
	"clinidoc-be/pkg/database"
	"clinidoc-be/pkg/embedding"
	"clinidoc-be/pkg/embedding/jina"
	"clinidoc-be/pkg/extractor"
	"clinidoc-be/pkg/lease"
	"clinidoc-be/pkg/pipeline"

	"clinidoc-be/internal/pkg/logger"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// cliNotifier prints job updates as colored progress lines.
type cliNotifier struct{}

func (cliNotifier) JobUpdated(job entity.IngestionJob) {
	switch job.State {
	case entity.JobCompleted:
		color.Green("  [%s] %d/%d chunks committed", job.State, job.ChunksCommitted, job.TotalChunks)
	case entity.JobFailed:
		color.Red("  [%s] %s", job.State, job.Error)
	default:
		color.White("  [%s] %d/%d chunks, checkpoint=%d", job.State, job.ChunksCommitted, job.TotalChunks, job.LastCheckpointIndex)
	}
}

func main() {
	filePath := flag.String("file", "", "path to the PDF to ingest")
	extractOnly := flag.Bool("extract-only", false, "print the clinical extraction and exit without embedding")
	flag.Parse()

	if *filePath == "" {
		color.Red("Usage: ingest -file <document.pdf> [-extract-only]")
		os.Exit(1)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		color.Red("Failed to read file: %v", err)
		os.Exit(1)
	}

	cfg := config.Load()

	color.Cyan("🚀 Ingesting %s (%d bytes)", filepath.Base(*filePath), len(data))

	// 1. Extract
	color.Yellow("\n[1] Extracting pages")
	pages, err := extractor.Extract(data)
	if err != nil {
		color.Red("Extraction failed: %v", err)
		os.Exit(1)
	}
	color.Green("Extracted %d pages", len(pages))

	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page.Text)
		sb.WriteString("\n")
	}

	// 2. Clinical extraction
	color.Yellow("\n[2] Running clinical extraction")
	result, err := clinical.Extract(sb.String())
	if err != nil {
		color.Red("Clinical extraction failed: %v", err)
		os.Exit(1)
	}
	pretty, _ := json.MarshalIndent(result, "", "  ")
	color.White("%s", string(pretty))

	if *extractOnly {
		return
	}

	// 3. Persist document
	color.Yellow("\n[3] Persisting document")
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		color.Red("DB connection failed: %v", err)
		os.Exit(1)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	doc := &entity.Document{
		Id:          uuid.New(),
		Filename:    filepath.Base(*filePath),
		ContentHash: extractor.ContentHash(data),
		SizeBytes:   int64(len(data)),
		PageCount:   len(pages),
		CreatedAt:   time.Now(),
	}
	extractionJSON, _ := json.Marshal(result)
	if err := uow.DocumentRepository().Create(ctx, doc, data, extractionJSON); err != nil {
		color.Red("Failed to store document: %v", err)
		os.Exit(1)
	}
	color.Green("Document stored: %s", doc.Id)

	// 4. Run the pipeline synchronously
	color.Yellow("\n[4] Embedding and storing chunks")

	var provider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "jina" {
		provider = jina.NewJinaProvider(cfg.Ai.JinaAPIKey)
	} else {
		provider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
			embedding.Device(cfg.Ai.EmbeddingDevice),
			cfg.Ai.EmbeddingDims,
		)
	}

	job := &entity.IngestionJob{
		Id:         uuid.New(),
		DocumentId: doc.Id,
		State:      entity.JobPending,
		TotalPages: doc.PageCount,
		StartedAt:  time.Now(),
	}
	if err := uow.IngestionJobRepository().Create(ctx, job); err != nil {
		color.Red("Failed to create job: %v", err)
		os.Exit(1)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)
	defer func() {
		if err := sysLogger.Sync(); err != nil {
			log.Printf("logger sync: %v", err)
		}
	}()

	runner := pipeline.NewRunner(
		pipeline.Config{
			BatchSize:       cfg.Pipeline.BatchSize,
			ChunkTimeout:    cfg.Pipeline.ChunkTimeout,
			MaxChunkRetries: cfg.Pipeline.MaxChunkRetries,
			MaxStoreRetries: cfg.Pipeline.MaxStoreRetries,
			RetryBackoff:    cfg.Pipeline.RetryBackoff,
		},
		pipeline.ExtractorFunc(extractor.Extract),
		chunker.New(
			chunker.WithWindow(cfg.Pipeline.ChunkWindow),
			chunker.WithOverlap(cfg.Pipeline.ChunkOverlap),
		),
		provider,
		uow.KnowledgeChunkRepository(),
		uow.IngestionJobRepository(),
		lease.NewMemoryLeaser(),
		cliNotifier{},
		sysLogger,
	)

	if err := runner.Run(ctx, job, data); err != nil {
		color.Red("Pipeline failed: %v", err)
		os.Exit(1)
	}

	color.Green("\n✅ Done: job %s, %d chunks committed, %d skipped",
		job.Id, job.ChunksCommitted, len(job.SkippedChunks))
}
