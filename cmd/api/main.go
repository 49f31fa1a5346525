package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/voting-identity/internal/api/http"
	"github.com/spec-kit/voting-identity/internal/api/http/handlers"
	"github.com/spec-kit/voting-identity/internal/auth"
	"github.com/spec-kit/voting-identity/internal/config"
	"github.com/spec-kit/voting-identity/internal/events"
	"github.com/spec-kit/voting-identity/internal/notify"
	"github.com/spec-kit/voting-identity/internal/observability"
	"github.com/spec-kit/voting-identity/internal/persistence"
	"github.com/spec-kit/voting-identity/internal/repository"
	"github.com/spec-kit/voting-identity/internal/service"
	"github.com/spec-kit/voting-identity/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewCachedRoleRepository(
		repository.NewRoleRepository(pool),
		redis.Client,
		cfg.Identity.RoleCacheTTL(),
	)
	hierarchyRepo := repository.NewHierarchyRepository(pool)

	var gateway notify.Gateway
	if cfg.SMTP.Host != "" {
		mailer, err := notify.NewMailer(cfg.SMTP)
		if err != nil {
			logger.Fatal("failed to init mailer", zap.Error(err))
		}
		gateway = mailer
	} else {
		gateway = notify.NewLogGateway(logger)
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	identityService := service.NewIdentityService(*cfg, service.IdentityDependencies{
		UserRepo:      userRepo,
		RoleRepo:      roleRepo,
		HierarchyRepo: hierarchyRepo,
		Gateway:       gateway,
		Dispatcher:    dispatcher,
	}, logger)
	authService := service.NewAuthService(*cfg, userRepo, dispatcher, logger)
	importService := service.NewImportService(identityService, dispatcher, logger)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, identityService),
		Users:          handlers.NewUsersHandler(identityService),
		Import:         handlers.NewImportHandler(importService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
