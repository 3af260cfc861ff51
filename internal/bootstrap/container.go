package bootstrap

import (
	"fmt"
	"log"

	"context-generator-be/internal/config"
	"context-generator-be/internal/controller"
	"context-generator-be/internal/handler"
	"context-generator-be/internal/pkg/logger"
	"context-generator-be/internal/repository/memory"
	"context-generator-be/internal/service"
	"context-generator-be/internal/websocket"
	"context-generator-be/pkg/aggregate"
	"context-generator-be/pkg/events"
	"context-generator-be/pkg/llm/factory"
	"context-generator-be/pkg/pdfparse"
	"context-generator-be/pkg/toolrunner"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	SettingsController controller.ISettingsController
	FileController     controller.IFileController
	ContextController  controller.IContextController
	PersonaController  controller.IPersonaController
	StatusController   controller.IStatusController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Progress
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub

	Logger      logger.ILogger
	SessionRepo *memory.SessionRepository
	PubSub      *gochannel.GoChannel
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 2. Event Bus
	// Progress events must reach the browser in order, so Publish waits
	// for the consumer's ack.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermillLogger,
	)

	// 3. External tools
	runner := toolrunner.NewExecRunner(sysLogger)
	parser := pdfparse.NewParser(pdfparse.Options{
		Command:  cfg.Tools.LlamaParseCommand,
		AuthFile: cfg.Tools.LlamaParseAuthFile,
		Timeout:  cfg.Tools.Timeout,
		Runner:   runner,
		Logger:   sysLogger,
	})
	aggregator := aggregate.NewAggregator(aggregate.Options{
		Command: cfg.Tools.FilesToPromptCommand,
		Timeout: cfg.Tools.Timeout,
		Runner:  runner,
		Logger:  sysLogger,
	})

	llmProvider, err := factory.NewLLMProvider(factory.ProviderConfig{
		Type:        "gemini",
		Model:       cfg.Ai.PersonaModel,
		BaseURL:     cfg.Ai.GeminiBaseURL,
		APIKey:      cfg.Keys.GoogleGemini,
		Temperature: cfg.Ai.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: gemini (%s)", cfg.Ai.PersonaModel)

	// In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository(cfg.App.SessionTTL)

	// WebSocket Hub, started by main
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	wsHub := websocket.NewHub(wsLogger)

	publisher := events.NewWatermillPublisher(pubSub, events.TopicProgress, wsLogger)
	consumerService := service.NewConsumerService(pubSub, events.TopicProgress, wsHub, wsLogger)

	// 4. Services
	settingsService := service.NewSettingsService(sessionRepo, cfg.Paths, sysLogger)
	fileService := service.NewFileService(settingsService, cfg.App.UploadMaxMB, sysLogger)
	contextService := service.NewContextService(
		settingsService,
		parser,
		aggregator,
		publisher,
		cfg.App.PreviewMaxBytes,
		sysLogger,
	)
	personaService := service.NewPersonaService(settingsService, llmProvider, service.PersonaOptions{
		APIKey:          cfg.Keys.GoogleGemini,
		Model:           cfg.Ai.PersonaModel,
		Temperature:     cfg.Ai.Temperature,
		SnippetMaxChars: cfg.Ai.SnippetMaxChars,
	}, sysLogger)
	statusService := service.NewStatusService(parser, sessionRepo, service.StatusOptions{
		Tools:        []string{parser.Command(), aggregator.Command()},
		GeminiAPIKey: cfg.Keys.GoogleGemini,
		PersonaModel: cfg.Ai.PersonaModel,
	}, sysLogger)

	// 5. Controllers
	return &Container{
		SettingsController: controller.NewSettingsController(settingsService),
		FileController:     controller.NewFileController(fileService),
		ContextController:  controller.NewContextController(contextService),
		PersonaController:  controller.NewPersonaController(personaService),
		StatusController:   controller.NewStatusController(statusService),

		ConsumerService: consumerService,

		ProgressHandler: handler.NewProgressHandler(wsHub, wsLogger),
		WebSocketHub:    wsHub,

		Logger:      sysLogger,
		SessionRepo: sessionRepo,
		PubSub:      pubSub,
	}, nil
}
