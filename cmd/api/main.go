package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"shotbox/internal/cache"
	"shotbox/internal/config"
	"shotbox/internal/database"
	"shotbox/internal/events"
	"shotbox/internal/handlers"
	"shotbox/internal/ingest"
	"shotbox/internal/jobs"
	"shotbox/internal/log"
	"shotbox/internal/repository"
	"shotbox/internal/server"
	"shotbox/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)
	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	container, openErr := storage.Open(cfg.Storage)
	if openErr != nil {
		logger.Error().Err(openErr).Msg("blob storage unavailable; uploads will fail until RAW_IMAGE_STORAGE is set")
	} else {
		observer, err := storage.NewPrometheusObserver("", registry)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to register storage metrics")
		}
		container = storage.Instrument(container, observer)
	}

	deps := handlers.Dependencies{Registerer: registry}

	var ledger ingest.Recorder
	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if dbPool != nil {
		uploads := repository.NewUploadRepository(dbPool)
		if err := uploads.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate upload ledger")
		}
		ledger = uploads
		deps.Uploads = uploads
		deps.PingDatabase = dbPool.Ping
	}

	var publisher ingest.EventPublisher
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	if redisClient != nil {
		publisher = events.NewPublisher(redisClient, cfg.Redis.Stream)
		deps.PingCache = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	svc := ingest.NewService(container, openErr, ledger, publisher, logger)
	handlerSet, err := handlers.NewHandlerSet(logger, cfg, svc, deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build handlers")
	}
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, registry)

	scheduler := jobs.NewScheduler(redisClient, cfg.Redis.Stream, cfg.Jobs.StreamMaxLen, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, func() {
		if dbPool != nil {
			dbPool.Close()
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("redis close error")
			}
		}
	})
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, closeDeps func()) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
	}

	closeDeps()
	logger.Info().Msg("server exited cleanly")
}
