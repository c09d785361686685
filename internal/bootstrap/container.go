package bootstrap

import (
	"log"

	"scentence-be/internal/config"
	"scentence-be/internal/controller"
	"scentence-be/internal/pkg/logger"
	"scentence-be/internal/repository/implementation"
	"scentence-be/internal/repository/memory"
	"scentence-be/internal/repository/unitofwork"
	"scentence-be/internal/service"
	"scentence-be/pkg/dialog/catalog"
	"scentence-be/pkg/dialog/interview"
	"scentence-be/pkg/dialog/research"
	"scentence-be/pkg/dialog/router"
	"scentence-be/pkg/dialog/runtime"
	"scentence-be/pkg/dialog/writer"
	"scentence-be/pkg/embedding"
	"scentence-be/pkg/llm/factory"
	pkgNats "scentence-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

const usageTopicName = "chat.turn.usage"

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
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

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "openai" {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Ai.EmbeddingBaseURL,
			cfg.Ai.EmbeddingAPIKey,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.EmbeddingBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		BaseURL:  cfg.Ai.LLMBaseURL,
		APIKey:   cfg.Ai.LLMAPIKey,
		Model:    cfg.Ai.FastModel,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (fast=%s, deep=%s)",
		cfg.Ai.LLMProvider, cfg.Ai.FastModel, cfg.Ai.DeepModel)

	// 4. Catalog Gateway and Turn Pipeline
	perfumeRepo := implementation.NewPerfumeRepository(db)
	noteEmbeddingRepo := implementation.NewNoteEmbeddingRepository(db)
	gateway := catalog.NewGateway(perfumeRepo, noteEmbeddingRepo, embeddingProvider, cfg.Search.OrderPolicy)

	turnRouter := router.NewRouter(llmProvider, cfg.Ai.FastModel)
	interviewer := interview.NewInterviewer(llmProvider, cfg.Ai.FastModel)
	planner := research.NewPlanner(llmProvider, cfg.Ai.DeepModel)
	executor := research.NewExecutor(planner, gateway)
	composer := writer.NewComposer(llmProvider, cfg.Ai.DeepModel)

	turnRuntime, err := runtime.NewRuntime(turnRouter, interviewer, executor, composer)
	if err != nil {
		log.Fatalf("[FATAL] Failed to assemble turn runtime: %v", err)
	}

	// 5. Conversation State and Services
	stateRepo := memory.NewStateRepository()

	// External event bus is optional; turn events are dropped when NATS
	// is not configured or unreachable.
	var natsPub *pkgNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pkgNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
	}

	publisherService := service.NewPublisherService(usageTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		usageTopicName,
		uowFactory,
	)

	chatService := service.NewChatService(
		uowFactory,
		stateRepo,
		turnRuntime,
		publisherService,
		natsPub,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService),
		ConsumerService: consumerService,
	}
}
