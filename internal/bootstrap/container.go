package bootstrap

import (
	"context"
	"log"
	"time"

	"insightops-be/internal/config"
	"insightops-be/internal/controller"
	"insightops-be/internal/pkg/logger"
	"insightops-be/internal/repository/unitofwork"
	"insightops-be/internal/service"
	"insightops-be/pkg/decay"
	"insightops-be/pkg/embedding"
	llmfactory "insightops-be/pkg/llm/factory"
	"insightops-be/pkg/rag/breaker"
	ragcache "insightops-be/pkg/rag/cache"
	"insightops-be/pkg/rag/response"
	"insightops-be/pkg/rag/search"

	pktNats "insightops-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	InsightController  controller.IInsightController
	DecayController    controller.IDecayController

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	SchedulerService service.ISchedulerService
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

	// NATS
	var eventPublisher service.IEventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}

	// 3. AI Providers
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.GeminiKey,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	chatProvider := llmfactory.NewChatProvider(cfg)
	if chatProvider != nil {
		log.Printf("[INFO] Using Chat Provider: %s", chatProvider.Name())
	} else {
		log.Printf("[INFO] No chat provider configured: answering in basic mode")
	}

	// 4. Answer Cache
	cacheTTL := time.Duration(cfg.Ai.CacheTTLMinutes) * time.Minute
	var answerCache response.CacheStore
	if cfg.Ai.AnswerCacheStore == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		answerCache = ragcache.NewRedisCache(rdb, cacheTTL)
		log.Printf("[INFO] Using Answer Cache: REDIS")
	} else {
		answerCache = ragcache.NewMemoryCache(cacheTTL)
		log.Printf("[INFO] Using Answer Cache: MEMORY")
	}

	// 5. RAG Pipeline
	documentSource := service.NewDocumentSource(uowFactory)
	retriever := search.NewRetriever(documentSource)
	circuitBreaker := breaker.New(breaker.SystemClock())
	responder := response.NewResponder(
		embeddingProvider,
		retriever,
		chatProvider,
		circuitBreaker,
		answerCache,
		response.WithCooldown(time.Duration(cfg.Ai.CooldownMinutes)*time.Minute),
	)

	// 6. Decay Pipeline
	orchestrator := decay.NewOrchestrator(decay.SystemClock())

	// 7. Services
	publisherService := service.NewPublisherService(cfg.Topics.EmbedDocument, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Topics.EmbedDocument,
		uowFactory,
		embeddingProvider,
		answerCache,
		eventPublisher,
	)

	documentService := service.NewDocumentService(uowFactory, publisherService, answerCache, eventPublisher)
	insightService := service.NewInsightService(responder, retriever, embeddingProvider, sysLogger)
	decayService := service.NewDecayService(uowFactory, orchestrator, eventPublisher, sysLogger)
	schedulerService := service.NewSchedulerService(cfg.Ai.DecayScanCron, decayService, sysLogger)

	// 8. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
		InsightController:  controller.NewInsightController(insightService),
		DecayController:    controller.NewDecayController(decayService),

		ConsumerService:  consumerService,
		SchedulerService: schedulerService,
	}
}
