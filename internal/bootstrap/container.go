package bootstrap

import (
	"context"
	"log"

	"nextmind-agent-be/internal/config"
	"nextmind-agent-be/internal/controller"
	"nextmind-agent-be/internal/pkg/logger"
	"nextmind-agent-be/internal/repository/implementation"
	"nextmind-agent-be/internal/repository/memory"
	"nextmind-agent-be/internal/service"
	"nextmind-agent-be/pkg/agent/fastpath"
	"nextmind-agent-be/pkg/agent/pipeline"
	"nextmind-agent-be/pkg/agent/tools"
	"nextmind-agent-be/pkg/cache"
	"nextmind-agent-be/pkg/conversation"
	"nextmind-agent-be/pkg/embedding"
	"nextmind-agent-be/pkg/llm/factory"
	"nextmind-agent-be/pkg/rag/gate"
	"nextmind-agent-be/pkg/rag/localdocs"
	"nextmind-agent-be/pkg/rag/retriever"
	"nextmind-agent-be/pkg/rag/webresearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	IngestController controller.IIngestController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pkgLogger := log.Default()

	// Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Redis
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Cache and conversation store disabled", err)
			rdb = nil
		}
	}

	// Repositories
	embeddingRepo := implementation.NewDocumentEmbeddingRepository(db)
	recordRepo := implementation.NewRecordRepository(db)
	payloadRepo := memory.NewPayloadRepository()

	// Embedding Provider
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	// LLM Providers. The fast one answers trivial turns and classifies,
	// the pipeline one synthesizes final answers.
	fastLLM, err := factory.NewLLMProvider(
		cfg.Ai.Provider,
		cfg.Keys.OpenAI,
		cfg.Ai.BaseURL,
		factory.ModelPair{Primary: cfg.Ai.FastModel, Fallback: cfg.Ai.FastFallbackModel},
		pkgLogger,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize fast LLM provider: %v", err)
	}
	pipelineLLM, err := factory.NewLLMProvider(
		cfg.Ai.Provider,
		cfg.Keys.OpenAI,
		cfg.Ai.BaseURL,
		factory.ModelPair{Primary: cfg.Ai.PipelineModel, Fallback: cfg.Ai.PipelineFallback},
		pkgLogger,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize pipeline LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM models: fast=%s pipeline=%s", cfg.Ai.FastModel, cfg.Ai.PipelineModel)

	// RAG stack
	ragGate := gate.NewGate(fastLLM, pkgLogger)
	ragRetriever := retriever.NewRetriever(embeddingProvider, embeddingRepo, cfg.Rag.TopK, cfg.Rag.Threshold, pkgLogger)
	localDocs := localdocs.NewSearcher(cfg.Rag.DocsDir)
	webClient := webresearch.NewClient(cfg.Keys.Tavily, cfg.Rag.WebResearch, pkgLogger)

	// Agent pipeline
	toolRegistry := tools.NewRegistry(tools.TextExtractor{}, recordRepo, pkgLogger)
	router := pipeline.NewRouter(fastLLM, ragGate, ragRetriever, pkgLogger)
	executor := pipeline.NewExecutor(toolRegistry, int64(cfg.Ai.ToolConcurrency), pkgLogger)
	synthesizer := pipeline.NewSynthesizer(pipelineLLM, fastLLM, cfg.Ai.MaxTokens, pkgLogger)
	fastPath := fastpath.NewFastPath(fastLLM, pkgLogger)

	// Conversation state
	chatCache := cache.NewChatCache(rdb, "", cfg.Cache.ChatTTL)
	store := conversation.NewStore(rdb, "", cfg.Cache.ConversationTTL)

	// Services
	chatService := service.NewChatService(
		chatCache,
		store,
		payloadRepo,
		fastPath,
		router,
		executor,
		synthesizer,
		localDocs,
		webClient,
		sysLogger,
	)
	ingestService := service.NewIngestService(pubSub, cfg.Rag.IngestTopic, embeddingRepo)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Rag.IngestTopic,
		embeddingRepo,
		embeddingProvider,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
	)

	return &Container{
		ChatController:   controller.NewChatController(chatService),
		IngestController: controller.NewIngestController(ingestService),

		ConsumerService: consumerService,
	}
}
