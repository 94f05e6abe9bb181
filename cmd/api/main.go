package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"cookiejar/creator/internal/cache"
	"cookiejar/creator/internal/config"
	"cookiejar/creator/internal/database"
	"cookiejar/creator/internal/handlers"
	"cookiejar/creator/internal/jobs"
	"cookiejar/creator/internal/log"
	"cookiejar/creator/internal/queue"
	"cookiejar/creator/internal/repository"
	"cookiejar/creator/internal/routing"
	"cookiejar/creator/internal/server"
	"cookiejar/creator/internal/service"
	"cookiejar/creator/internal/session"
	"cookiejar/creator/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Log.Level)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBuckets(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure buckets failed")
	}

	profiles := repository.NewProfileRepository(dbPool)
	games := repository.NewGameRepository(dbPool)
	producer := queue.NewProducer(redisClient, cfg.Worker.Stream)

	sessions := session.NewProvider(
		cfg.Security.SessionSecret,
		cfg.Security.SessionTTL,
		session.NewRedisRevocationStore(redisClient),
		logger,
	)

	handlerSet := handlers.NewHandlerSet(handlers.Dependencies{
		Log:        logger,
		Config:     cfg,
		Sessions:   sessions,
		Auth:       service.NewAuthService(profiles, sessions, cfg.Security.PasswordMinLength, logger),
		Enrollment: service.NewEnrollmentService(profiles, logger),
		Profiles:   service.NewProfileService(profiles),
		Games:      service.NewGameService(games, objectStore),
		Uploads:    service.NewUploadService(games, objectStore, producer, cfg.Upload.MaxFileBytes, cfg.Security.SignatureSecret, logger),
		Checks: map[string]handlers.Check{
			"postgres": dbPool.Ping,
			"redis":    func(ctx context.Context) error { return cache.Ping(ctx, redisClient) },
		},
	})

	router := routing.NewRouter(routing.Hosts{
		Public:        cfg.Hosts.Public,
		PublicAliases: cfg.Hosts.PublicAliases,
		Creator:       cfg.Hosts.Creator,
		Dev:           cfg.Hosts.Dev,
	})
	engine := server.NewEngine(cfg, logger, router, sessions, handlerSet)
	httpServer := server.NewHTTPServer(cfg, logger, engine)

	scheduler := jobs.NewScheduler(producer, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
