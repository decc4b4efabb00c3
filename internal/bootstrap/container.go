package bootstrap

import (
	"context"
	"log"

	"clinidoc-be/internal/config"
	"clinidoc-be/internal/controller"
	"clinidoc-be/internal/handler"
	"clinidoc-be/internal/pkg/logger"
	"clinidoc-be/internal/repository/memory"
	"clinidoc-be/internal/repository/unitofwork"
	"clinidoc-be/internal/service"
	"clinidoc-be/internal/websocket"
	"clinidoc-be/pkg/chunker"
	"clinidoc-be/pkg/embedding"
	"clinidoc-be/pkg/embedding/jina"
	"clinidoc-be/pkg/extractor"
	"clinidoc-be/pkg/lease"
	pktNats "clinidoc-be/pkg/nats"
	"clinidoc-be/pkg/pipeline"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// IngestTopic is the watermill topic carrying ingestion trigger messages.
const IngestTopic = "document.ingest"

type Container struct {
	// Controllers
	DocumentController  controller.IDocumentController
	IngestionController controller.IIngestionController
	KnowledgeController controller.IKnowledgeController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding Provider
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Ai.JinaAPIKey)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
			embedding.Device(cfg.Ai.EmbeddingDevice),
			cfg.Ai.EmbeddingDims,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s, %s)", cfg.Ai.OllamaModel, cfg.Ai.EmbeddingDevice)
	}

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisUp := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisUp = false
	}

	// Job lease: Redis when available so multiple instances agree, otherwise
	// a process-local fallback.
	var leaser lease.Leaser
	if redisUp {
		leaser = lease.NewRedisLeaser(rdb, cfg.Pipeline.LeaseTTL)
	} else {
		leaser = lease.NewMemoryLeaser()
	}

	// WebSocket Hub
	var hubRedis *redis.Client
	if redisUp {
		hubRedis = rdb
	}
	wsHub := websocket.NewHub(hubRedis, sysLogger)
	go wsHub.Run()

	// 5. Pipeline
	notifier := service.NewIngestionNotifier(wsHub, natsPub, sysLogger)

	jobRepo := uowFactory.NewUnitOfWork(context.Background()).IngestionJobRepository()
	chunkRepo := uowFactory.NewUnitOfWork(context.Background()).KnowledgeChunkRepository()

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
		embeddingProvider,
		chunkRepo,
		jobRepo,
		leaser,
		notifier,
		sysLogger,
	)

	// 6. Services
	extractionCache := memory.NewExtractionCache()
	publisherService := service.NewPublisherService(IngestTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, IngestTopic, uowFactory, runner)

	documentService := service.NewDocumentService(uowFactory, extractionCache, sysLogger)
	ingestionService := service.NewIngestionService(uowFactory, publisherService, runner, sysLogger)
	knowledgeService := service.NewKnowledgeService(uowFactory, embeddingProvider, sysLogger)

	progressHandler := handler.NewProgressHandler(wsHub, sysLogger)

	// 7. Controllers
	return &Container{
		DocumentController:  controller.NewDocumentController(documentService),
		IngestionController: controller.NewIngestionController(ingestionService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),

		ConsumerService: consumerService,

		ProgressHandler: progressHandler,
		WebSocketHub:    wsHub,
	}
}
