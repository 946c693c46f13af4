package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"conectame/internal/cache"
	"conectame/internal/config"
	"conectame/internal/handlers"
	"conectame/internal/log"
	"conectame/internal/repository"
	"conectame/internal/server"
	"conectame/internal/service"
	"conectame/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	backend, err := storage.Open(ctx, cfg.Storage, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open storage")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	sessions := repository.NewSessionRepository(redisClient)

	authService, err := service.NewAuthService(backend.Accounts, sessions, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init auth service")
	}
	if _, err := authService.Bootstrap(ctx); err != nil {
		logger.Fatal().Err(err).Msg("bootstrap failed")
	}
	clientService := service.NewClientService(authService, backend.Clients, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, authService, clientService,
		handlers.HealthCheck{Name: backend.Driver, Ping: backend.Ping},
		handlers.HealthCheck{Name: "redis", Ping: sessions.Ping},
	)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, backend, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, backend storage.Backend, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if err := backend.Close(); err != nil {
		logger.Error().Err(err).Msg("storage close error")
	}
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
