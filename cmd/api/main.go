package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/qcbot/backend/internal/api/handlers"
	"github.com/qcbot/backend/internal/dataset"
	"github.com/qcbot/backend/internal/engine"
	"github.com/qcbot/backend/internal/index"
	"github.com/qcbot/backend/internal/llm"
	"github.com/qcbot/backend/internal/metrics"
	"github.com/qcbot/backend/internal/middleware/ratelimit"
	"github.com/qcbot/backend/internal/middleware/security"
	"github.com/qcbot/backend/internal/middleware/validation"
	"github.com/qcbot/backend/internal/session"
	sessionredis "github.com/qcbot/backend/internal/session/redis"
	"github.com/qcbot/backend/internal/storage/sqlite"
	"github.com/qcbot/backend/internal/vector"
	vectormemory "github.com/qcbot/backend/internal/vector/memory"
	"github.com/qcbot/backend/internal/vector/milvus"
	"github.com/qcbot/backend/pkg/config"
	appLogger "github.com/qcbot/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting QC chatbot API server")

	metrics.Init()

	// Dataset load is fatal: the process cannot serve anything without it.
	data, err := dataset.Load(cfg.Data.Path)
	if err != nil {
		appLogger.Fatal("Failed to load dataset", zap.Error(err))
	}
	indexes := index.Build(data.Records)
	metrics.DatasetRecords.Set(float64(len(data.Records)))

	appLogger.Info("Dataset loaded",
		zap.Int("plants", data.Summary.TotalPlants),
		zap.Int("sections", data.Summary.TotalSections),
		zap.Int("items", data.Summary.TotalItems),
		zap.Int("readings", data.Summary.TotalReadings),
	)

	var store session.Store
	if cfg.Redis.Enabled {
		redisClient, err := sessionredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		store = redisClient
	} else {
		store = session.NewMemoryStore()
	}
	sessions := session.NewManager(store, time.Duration(cfg.Engine.SessionTTL)*time.Second)

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// The provider is optional: without an API key both engines run with
	// templates and name matching.
	var provider engine.Provider
	if cfg.LLM.APIKey != "" {
		provider = llm.NewClient(
			cfg.LLM.APIKey,
			cfg.LLM.Model,
			cfg.LLM.EmbeddingModel,
			cfg.LLM.Temperature,
			cfg.LLM.MaxTokens,
		)
	} else {
		appLogger.Warn("No LLM API key configured, running with template fallbacks")
	}

	var vectors vector.Store
	switch cfg.Vector.Provider {
	case "milvus":
		milvusClient, err := milvus.NewClient(cfg.Vector.Endpoint, cfg.Vector.CollectionName)
		if err != nil {
			appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
		}
		defer milvusClient.Close()
		vectors = milvusClient
	default:
		vectors = vectormemory.NewStore()
	}

	var eng engine.Engine
	switch cfg.Engine.Mode {
	case "hierarchical":
		eng = engine.NewHierarchical(data, sessions, provider, vectors)
	default:
		eng = engine.NewWizard(indexes, sessions)
	}
	appLogger.Info("Engine selected", zap.String("mode", cfg.Engine.Mode))

	if err := eng.Initialize(context.Background()); err != nil {
		appLogger.Warn("Engine initialization degraded", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))
	limiter := ratelimit.New(ratelimit.Config{
		Logger: appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	chatHandler := handlers.NewChatHandler(eng, cfg.Engine.Mode, sqliteClient)
	wsHandler := handlers.NewWebSocketHandler(eng)

	api := app.Group("/api/v1")

	chat := api.Group("/chat")
	chat.Post("/initialize", chatHandler.HandleInitialize)
	chat.Post("/message", chatHandler.HandleMessage)
	chat.Get("/history/:sessionID", chatHandler.HandleHistory)
	chat.Get("/tree/:sessionID", chatHandler.HandleTree)
	chat.Post("/reset", chatHandler.HandleReset)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.Handler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
