package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/adapters/event"
	"github.com/khoahotran/projectshelf/adapters/media_storage"
	"github.com/khoahotran/projectshelf/adapters/persistence"
	analyticsUC "github.com/khoahotran/projectshelf/internal/application/usecase/analytics"
	mediaUC "github.com/khoahotran/projectshelf/internal/application/usecase/media"
	"github.com/khoahotran/projectshelf/internal/config"
	"github.com/khoahotran/projectshelf/pkg/logger"
	"github.com/khoahotran/projectshelf/pkg/metrics"
	"github.com/khoahotran/projectshelf/pkg/tracing"
)

func main() {
	fmt.Println("Starting ProjectShelf Worker...")

	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	defer appLogger.Sync()

	if !cfg.Kafka.Enabled {
		appLogger.Fatal("Worker requires kafka.enabled", fmt.Errorf("kafka disabled"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "worker")
	if err != nil {
		appLogger.Fatal("Cannot initialize tracing", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			appLogger.Error("Failed to shut down tracer", err)
		}
	}()

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	_, transformer, err := media_storage.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize media storage", err)
	}

	// Repositories
	analyticsRepo := persistence.NewPostgresAnalyticsRepo(dbPool, appLogger)
	mediaRepo := persistence.NewPostgresMediaRepo(dbPool, appLogger)

	// Worker Use Cases
	workerMetrics := metrics.New("projectshelf_worker")
	ingestUseCase := analyticsUC.NewIngestEventUseCase(analyticsRepo, workerMetrics)
	processMediaUseCase := mediaUC.NewProcessMediaUseCase(mediaRepo, transformer, appLogger)

	// Kafka Consumers
	consumers := map[string]*event.Consumer{
		event.TopicAnalyticsEvents: event.NewConsumer(
			event.NewReader(cfg.Kafka.Brokers, event.TopicAnalyticsEvents, cfg.Kafka.GroupID+"-analytics"),
			event.AnalyticsHandler(ingestUseCase),
			appLogger.With(zap.String("consumer", "analytics")),
		),
		event.TopicMediaEvents: event.NewConsumer(
			event.NewReader(cfg.Kafka.Brokers, event.TopicMediaEvents, cfg.Kafka.GroupID+"-media"),
			event.MediaHandler(processMediaUseCase),
			appLogger.With(zap.String("consumer", "media")),
		),
	}

	var wg sync.WaitGroup
	for topic, c := range consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			appLogger.Info("Worker listening", zap.String("topic", topic))
			if err := c.Run(ctx); err != nil {
				appLogger.Error("Consumer stopped", err, zap.String("topic", topic))
			}
		}()
	}

	<-ctx.Done()
	appLogger.Info("Shutting down worker...")
	wg.Wait()
	for topic, c := range consumers {
		if err := c.Close(); err != nil {
			appLogger.Warn("Failed to close consumer", zap.String("topic", topic), zap.Error(err))
		}
	}
	appLogger.Info("Worker exited")
}
