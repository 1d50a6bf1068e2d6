package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wm-metals/trade-api/internal/auth"
	"github.com/wm-metals/trade-api/internal/cache"
	"github.com/wm-metals/trade-api/internal/config"
	"github.com/wm-metals/trade-api/internal/database"
	"github.com/wm-metals/trade-api/internal/functions"
	"github.com/wm-metals/trade-api/internal/http/handler"
	"github.com/wm-metals/trade-api/internal/http/middleware"
	"github.com/wm-metals/trade-api/internal/http/router"
	"github.com/wm-metals/trade-api/internal/jobs"
	"github.com/wm-metals/trade-api/internal/logger"
	"github.com/wm-metals/trade-api/internal/pdf"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"github.com/wm-metals/trade-api/internal/service"
	"github.com/wm-metals/trade-api/internal/storage"
	"github.com/wm-metals/trade-api/internal/validation"
	"go.uber.org/zap"
)

// @title WM Trade API
// @version 1.0
// @description CRM and trading dashboard API for customers, pipeline, ledger and quotes

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Realtime hub and query cache. The bridge is the only component
	// that invalidates cache tags; services just publish events.
	hub := realtime.NewHub(log)
	store := cache.NewStore(cfg.Cache.TTL(), log)
	bridge := realtime.NewBridge(hub, store, log)
	bridge.Start()

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	dealRepo := repository.NewDealRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)
	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)

	// Remote validation is optional; with no functions base URL the
	// structural pass stands alone
	functionsClient := functions.NewClient(&cfg.Functions, log)
	var remote validation.RemoteValidator
	if functionsClient != nil {
		remote = functionsClient
	}
	validator := validation.New(remote, log)

	quoteRenderer := pdf.NewQuoteRenderer(cfg.App.Name)

	// Initialize services
	customerService := service.NewCustomerService(db, customerRepo, opportunityRepo, hub, log)
	opportunityService := service.NewOpportunityService(opportunityRepo, customerRepo, hub, log)
	dealService := service.NewDealService(db, dealRepo, customerRepo, notificationRepo, userRepo, hub, log)
	transactionService := service.NewTransactionService(transactionRepo, hub, log)
	quoteService := service.NewQuoteService(db, quoteRepo, customerRepo, numberSequenceRepo, fileRepo, quoteRenderer, fileStorage, hub, log)
	taskService := service.NewTaskService(taskRepo, hub, log)
	notificationService := service.NewNotificationService(notificationRepo, hub, log)
	dashboardService := service.NewDashboardService(transactionRepo, dealRepo, opportunityRepo, store, log)
	importService := service.NewImportService(db, transactionRepo, fileRepo, fileStorage, hub, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	customerHandler := handler.NewCustomerHandler(customerService, validator, log)
	opportunityHandler := handler.NewOpportunityHandler(opportunityService, validator, log)
	dealHandler := handler.NewDealHandler(dealService, validator, log)
	transactionHandler := handler.NewTransactionHandler(transactionService, importService, validator, &cfg.Storage, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, validator, log)
	taskHandler := handler.NewTaskHandler(taskService, validator, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	realtimeHandler := handler.NewRealtimeHandler(hub, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		customerHandler,
		opportunityHandler,
		dealHandler,
		transactionHandler,
		quoteHandler,
		taskHandler,
		notificationHandler,
		dashboardHandler,
		realtimeHandler,
	)

	// Background jobs
	scheduler := jobs.NewScheduler(log)
	reminderJob := jobs.NewTaskReminderJob(taskRepo, notificationRepo, hub, log)
	if err := scheduler.AddJob("task-reminders", "0 0 7 * * *", func() {
		if err := reminderJob.Run(context.Background()); err != nil {
			log.Error("task reminder job failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to register reminder job: %w", err)
	}
	scoreJob := jobs.NewQualityScoreJob(customerRepo, log)
	if err := scheduler.AddJob("quality-scores", "0 30 2 * * *", func() {
		if err := scoreJob.Run(context.Background()); err != nil {
			log.Error("quality score job failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to register quality score job: %w", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		bridge.Stop()
		hub.Close()

		log.Info("Server stopped gracefully")
	}

	return nil
}
