package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/bearer-auth/internal/api/http"
	"github.com/spec-kit/bearer-auth/internal/api/http/handlers"
	"github.com/spec-kit/bearer-auth/internal/auth"
	"github.com/spec-kit/bearer-auth/internal/config"
	"github.com/spec-kit/bearer-auth/internal/events"
	"github.com/spec-kit/bearer-auth/internal/observability"
	"github.com/spec-kit/bearer-auth/internal/persistence"
	"github.com/spec-kit/bearer-auth/internal/repository"
	"github.com/spec-kit/bearer-auth/internal/service"
	"github.com/spec-kit/bearer-auth/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pg *persistence.Postgres
	users := repository.NewMemoryUserRepository()
	if cfg.Postgres.DSN != "" {
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		users = repository.NewUserRepository(pg.PoolHandle())
	} else {
		logger.Warn("POSTGRES_DSN not provided; users are kept in memory")
	}

	var redis *persistence.Redis
	revocations := repository.NewMemoryRevocationRepository(time.Minute)
	if cfg.Auth.RevocationStore == config.RevocationStoreRedis {
		redis, err = persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redis.Close()
		revocations = repository.NewRedisRevocationRepository(redis.Client)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, revocations, logger.Named("jwt"))
	if err != nil {
		logger.Fatal("failed to init token service", zap.Error(err))
	}
	metrics := observability.NewMetrics()
	tokens.SetRecorder(metrics)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	details := service.NewUserDetailsService(users)
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   users,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	authMiddleware := auth.NewAuthMiddleware(auth.NewAuthenticator(tokens, details, dispatcher, logger))

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, details),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.ShutdownWithTimeout(10 * time.Second)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
