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

	httptransport "github.com/spec-kit/ticket-admin/internal/api/http"
	"github.com/spec-kit/ticket-admin/internal/api/http/handlers"
	"github.com/spec-kit/ticket-admin/internal/audit"
	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/config"
	"github.com/spec-kit/ticket-admin/internal/events"
	"github.com/spec-kit/ticket-admin/internal/observability"
	"github.com/spec-kit/ticket-admin/internal/persistence"
	"github.com/spec-kit/ticket-admin/internal/repository"
	"github.com/spec-kit/ticket-admin/internal/repository/memory"
	"github.com/spec-kit/ticket-admin/internal/service"
	"github.com/spec-kit/ticket-admin/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	deps := map[string]handlers.Pinger{}
	var store repository.Transactor
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pool)
		deps["postgres"] = pg
	} else {
		logger.Warn("using in-memory store seeded with demo accounts")
		store = memory.NewStore().SeedDemoUsers()
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()
	if redis.Client != nil {
		deps["redis"] = redis
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	profileCache := auth.NewProfileCache(redis.Client, cfg.Auth.ActorCacheTTL(), logger)

	var forwarder *events.NATSForwarder
	if cfg.NATS.URL != "" {
		nc, err := events.ConnectNATS(cfg.NATS.URL)
		if err != nil {
			logger.Fatal("failed to connect nats", zap.Error(err))
		}
		defer nc.Drain() //nolint:errcheck
		forwarder = events.NewNATSForwarder(nc, cfg.NATS.ActivitySubject, logger)
	}

	worker.StartActivityWorker(worker.ActivityWorkerDeps{
		Dispatcher:    dispatcher,
		Notifications: service.NewNotificationService(dispatcher, logger, cfg.Notification),
		ProfileCache:  profileCache,
		Metrics:       metrics,
		Forwarder:     forwarder,
		Logger:        logger,
	})

	auditLogger := audit.NewLogger(store.ActivityLogs(), logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Audit:      auditLogger,
		Dispatcher: dispatcher,
		Logger:     logger,
		MaxLimit:   cfg.Pagination.MaxLimit,
	})
	userService := service.NewUserAdminService(service.UserAdminDependencies{
		Store:      store,
		Audit:      auditLogger,
		Dispatcher: dispatcher,
		Logger:     logger,
		MaxLimit:   cfg.Pagination.MaxLimit,
	})
	activityService := service.NewActivityService(auditLogger, store.Users(), cfg.Pagination.MaxLimit)
	analyticsService := service.NewAnalyticsService(store, auditLogger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Users:          handlers.NewUsersHandler(userService, activityService),
		Activity:       handlers.NewActivityHandler(activityService, analyticsService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users(), profileCache),
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
