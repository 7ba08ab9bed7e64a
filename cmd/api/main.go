package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/legal-desk/internal/api/http"
	"github.com/spec-kit/legal-desk/internal/api/http/handlers"
	"github.com/spec-kit/legal-desk/internal/config"
	"github.com/spec-kit/legal-desk/internal/events"
	"github.com/spec-kit/legal-desk/internal/notify"
	"github.com/spec-kit/legal-desk/internal/observability"
	"github.com/spec-kit/legal-desk/internal/persistence"
	"github.com/spec-kit/legal-desk/internal/repository"
	"github.com/spec-kit/legal-desk/internal/service"
	"github.com/spec-kit/legal-desk/internal/worker"
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
	divisionRepo := repository.NewDivisionRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	sequenceRepo := repository.NewSequenceRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	contractRepo := repository.NewContractRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	reminderLogRepo := repository.NewReminderLogRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	mailer := notify.NewMailer(cfg.Notification, logger)

	settingsService := service.NewSettingsService(settingsRepo, redis.Client, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		DivisionRepo:   divisionRepo,
		SequenceRepo:   sequenceRepo,
		AttachmentRepo: attachmentRepo,
		ActivityRepo:   activityRepo,
		Dispatcher:     dispatcher,
	})
	contractService := service.NewContractService(service.ContractDependencies{
		ContractRepo:  contractRepo,
		DivisionRepo:  divisionRepo,
		SequenceRepo:  sequenceRepo,
		ActivityRepo:  activityRepo,
		TicketService: ticketService,
		Settings:      settingsService,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	reminderService := service.NewReminderService(service.ReminderDependencies{
		ContractRepo:     contractRepo,
		UserRepo:         userRepo,
		ReminderLogRepo:  reminderLogRepo,
		NotificationRepo: notificationRepo,
		Settings:         settingsService,
		Mailer:           mailer,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	service.NewNotificationService(dispatcher, logger).RegisterHandlers()

	scheduler := worker.NewScheduler(cfg.Scheduler, persistence.NewJobLock(redis.Client), metrics, logger,
		worker.Job{Name: "expire_contracts", Run: func(ctx context.Context) (int, int, error) {
			result, err := contractService.ExpireDueContracts(ctx)
			return result.Processed, result.Failed, err
		}},
		worker.Job{Name: "send_reminders", Run: func(ctx context.Context) (int, int, error) {
			result, err := reminderService.SendDueReminders(ctx)
			return result.Sent, result.Failed, err
		}},
		worker.Job{Name: "backfill_aging", Run: func(ctx context.Context) (int, int, error) {
			updated, err := ticketService.BackfillAging(ctx)
			return updated, 0, err
		}},
	)
	go scheduler.Start(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Contracts: handlers.NewContractsHandler(contractService),
		Jobs:      handlers.NewJobsHandler(ticketService, contractService, reminderService),
		Directory: handlers.NewDirectoryHandler(divisionRepo, userRepo, notificationRepo, settingsService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
