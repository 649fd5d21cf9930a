package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ventia/ventia-backend/configs"
	"github.com/ventia/ventia-backend/internal/agent"
	delivery "github.com/ventia/ventia-backend/internal/delivery/http"
	"github.com/ventia/ventia-backend/internal/ingest"
	"github.com/ventia/ventia-backend/internal/logging"
	"github.com/ventia/ventia-backend/internal/messaging/kafka"
	"github.com/ventia/ventia-backend/internal/notify"
	"github.com/ventia/ventia-backend/internal/repository/postgres"
	"github.com/ventia/ventia-backend/internal/resolver"
	"github.com/ventia/ventia-backend/internal/service"
	"github.com/ventia/ventia-backend/internal/session"
	"github.com/ventia/ventia-backend/internal/whatsapp"
)

func main() {
	// Local runs load .env; in containers the variables are already set.
	_ = godotenv.Load()

	cfg, err := configs.Load(getEnv("VENTIA_CONFIG_DIR", "./config"), getEnv("VENTIA_ENV", "local"))
	if err != nil {
		logging.Base().Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	log := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	// --- Database ---
	db, err := postgres.InitDB(cfg.Postgres.DSN, cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns)
	if err != nil {
		log.Error("Failed to init database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	businessRepo := postgres.NewBusinessRepository(db)
	productRepo := postgres.NewProductRepository(db)
	cartRepo := postgres.NewCartRepository(db)

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	defer rdb.Close()

	// --- Kafka ---
	publisher, subscriber := kafka.NewKafkaBroker(cfg.Kafka.Brokers)

	// --- Services ---
	res := resolver.New(productRepo, cfg.Resolver.Cutoff, logging.New("resolver"))
	catalogService := service.NewCatalogService(productRepo, res, publisher, cfg.Kafka.NotifyTopic, logging.New("catalog"))
	cartService := service.NewCartService(catalogService, cartRepo, logging.New("cart"))
	pipeline := ingest.NewPipeline(productRepo, logging.New("ingest"))

	sessions := session.NewRedisStore(rdb, cfg.Session.TTL, cfg.Session.MaxHistory)

	tokenStore := whatsapp.NewPostgresTokenStore(db, cfg.WhatsApp.EncryptionKey)
	sender := whatsapp.NewClient(tokenStore, cfg.WhatsApp.BaseURL, logging.New("whatsapp"))

	agentHandler := agent.NewHandler(
		businessRepo,
		catalogService,
		cartService,
		sessions,
		agent.NewCommandOrchestrator(),
		sender,
		cfg.Session.MaxHistory,
		logging.New("agent"),
	)

	// --- HTTP API ---
	httpHandler := delivery.NewHandler(agentHandler, catalogService, pipeline, logging.New("http"))
	httpServer := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// --- Start everything ---
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	notifier := notify.NewOwnerNotifier(
		subscriber, businessRepo, sender,
		cfg.Kafka.NotifyTopic, cfg.Kafka.ConsumerGroup,
		logging.New("notify"),
	)
	go notifier.Run(ctx)

	go func() {
		log.Info("HTTP server starting", "addr", cfg.App.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	log.Info("Owner notification consumer started", "topic", cfg.Kafka.NotifyTopic)

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error", "err", err)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
