package bootstrap

import (
	"context"
	"log"
	"time"

	"catalog-assist-be/internal/config"
	"catalog-assist-be/internal/controller"
	"catalog-assist-be/internal/handler"
	"catalog-assist-be/internal/pkg/logger"
	"catalog-assist-be/internal/pkg/mailer"
	"catalog-assist-be/internal/pkg/serverutils"
	"catalog-assist-be/internal/pkg/validation"
	"catalog-assist-be/internal/repository/memory"
	"catalog-assist-be/internal/repository/unitofwork"
	"catalog-assist-be/internal/service"
	"catalog-assist-be/internal/websocket"
	"catalog-assist-be/pkg/clarify"
	"catalog-assist-be/pkg/dialog"
	"catalog-assist-be/pkg/embedding"
	"catalog-assist-be/pkg/embedding/jina"
	"catalog-assist-be/pkg/intent"
	"catalog-assist-be/pkg/llm/factory"
	"catalog-assist-be/pkg/media"
	"catalog-assist-be/pkg/retrieval"

	pktNats "catalog-assist-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const auditTopic = "chat.audit"

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	ChatController controller.IChatController
	OpsController  controller.IOpsController

	// Background services, run from main.go
	AuditConsumerService service.IAuditConsumerService
	NotifierService      service.INotifierService

	// WebSockets
	ChatWsHandler *handler.ChatWsHandler
	WebSocketHub  *websocket.Hub

	JwtMiddleware fiber.Handler
	Validator     *validator.Validate
	Logger        logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	validate := validation.New()

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// In-process audit bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Embedding provider
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Ai.JinaAPIKey)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}

	// LLM provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Session storage
	sessionRepo := memory.NewSessionRepository(time.Duration(cfg.Dialog.SessionTTLMin) * time.Minute)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
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
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/chat_ws.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Retrieval stack
	indexLog := log.New(log.Writer(), "[index] ", log.LstdFlags)
	corpusService := service.NewCorpusService(cfg, embeddingProvider, uowFactory, sysLogger, indexLog)

	catalogSearcher, productSearcher, err := corpusService.BuildSearchers(context.Background())
	if err != nil {
		log.Fatalf("[FATAL] Failed to prepare retrieval corpora: %v", err)
	}

	retrLog := log.New(log.Writer(), "[retrieval] ", log.LstdFlags)
	retriever := retrieval.New(embeddingProvider, catalogSearcher, productSearcher, retrLog)

	clarifier := clarify.NewEngine(
		llmProvider,
		time.Duration(cfg.Dialog.ClarifyTimeoutMS)*time.Millisecond,
		log.New(log.Writer(), "[clarify] ", log.LstdFlags),
	)

	var photos dialog.PhotoFetcher
	if cfg.Media.BaseURL != "" {
		photos = media.NewClient(cfg.Media.BaseURL, cfg.Media.Token)
	}

	machine := dialog.NewMachine(retriever, clarifier, photos, dialog.Config{
		BaseThreshold:    float32(cfg.Dialog.BaseThreshold),
		Increment:        float32(cfg.Dialog.ThresholdStep),
		ProductThreshold: float32(cfg.Dialog.ProductThreshold),
		TopK:             cfg.Retrieval.TopK,
	}, log.New(log.Writer(), "[dialog] ", log.LstdFlags))

	extractor := intent.NewExtractor(llmProvider, log.New(log.Writer(), "[intent] ", log.LstdFlags))

	// Services
	authService := service.NewAuthService(uowFactory, emailService, natsPub)
	chatService := service.NewChatService(machine, sessionRepo, extractor, pubSub, auditTopic, natsPub, sysLogger)
	auditConsumer := service.NewAuditConsumerService(pubSub, auditTopic, uowFactory, sysLogger)

	var notifier service.INotifierService
	if natsSub != nil {
		notifier = service.NewNotifierService(natsSub, wsHub, wsLogger)
	}

	return &Container{
		AuthController:       controller.NewAuthController(authService, validate),
		ChatController:       controller.NewChatController(chatService, corpusService, validate),
		OpsController:        controller.NewOpsController(sysLogger),
		AuditConsumerService: auditConsumer,
		NotifierService:      notifier,
		ChatWsHandler:        handler.NewChatWsHandler(wsHub, wsLogger),
		WebSocketHub:         wsHub,
		JwtMiddleware:        serverutils.NewJwtMiddleware(cfg.App.JWTSecret),
		Validator:            validate,
		Logger:               sysLogger,
	}
}
