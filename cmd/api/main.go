package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/rental-relay/internal/api/http"
	"github.com/spec-kit/rental-relay/internal/api/http/handlers"
	"github.com/spec-kit/rental-relay/internal/auth"
	"github.com/spec-kit/rental-relay/internal/config"
	"github.com/spec-kit/rental-relay/internal/events"
	"github.com/spec-kit/rental-relay/internal/observability"
	"github.com/spec-kit/rental-relay/internal/persistence"
	"github.com/spec-kit/rental-relay/internal/repository"
	"github.com/spec-kit/rental-relay/internal/service"
	"github.com/spec-kit/rental-relay/internal/telephony"
	"github.com/spec-kit/rental-relay/internal/worker"
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

	if err := cfg.Telephony.Validate(); err != nil {
		logger.Fatal("telephony misconfigured", zap.Error(err))
	}

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
	propertyRepo := repository.NewPropertyRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)

	provider := telephony.NewRESTProvider(cfg.Telephony, logger)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, userRepo)
	propertyService := service.NewPropertyService(propertyRepo)
	reservationService := service.NewReservationService(service.ReservationDependencies{
		ReservationRepo:  reservationRepo,
		PropertyRepo:     propertyRepo,
		UserRepo:         userRepo,
		Provider:         provider,
		Dispatcher:       dispatcher,
		Logger:           logger,
		ProvisionTimeout: cfg.Telephony.ProvisionTimeout(),
	})
	relayService := service.NewRelayService(reservationRepo, propertyRepo, userRepo, redis, logger)
	notificationService := service.NewNotificationService(dispatcher, provider, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Properties:     handlers.NewPropertiesHandler(propertyService),
		Reservations:   handlers.NewReservationsHandler(reservationService),
		Webhooks:       handlers.NewWebhooksHandler(reservationService, relayService, cfg.Telephony.VoiceAnnouncementURL, logger),
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
