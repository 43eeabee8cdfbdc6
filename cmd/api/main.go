package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tillpoint/fiscal-api/internal/application/scheduler"
	"github.com/tillpoint/fiscal-api/internal/application/service"
	"github.com/tillpoint/fiscal-api/internal/config"
	"github.com/tillpoint/fiscal-api/internal/infrastructure/database"
	"github.com/tillpoint/fiscal-api/internal/infrastructure/repository"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/handler"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/routes"
	"github.com/tillpoint/fiscal-api/pkg/email"
	"github.com/tillpoint/fiscal-api/pkg/printer"
	"github.com/tillpoint/fiscal-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := config.NewLogger(&cfg.App)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		logger.Warnf("Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	workPeriodRepo := repository.NewWorkPeriodRepository(db)
	salesRepo := repository.NewSalesRepository(db)
	reportRepo := repository.NewZReportRepository(db)
	thresholdRepo := repository.NewThresholdRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize email service
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.SMTP.Host,
		SMTPPort:     cfg.SMTP.Port,
		SMTPUsername: cfg.SMTP.Username,
		SMTPPassword: cfg.SMTP.Password,
		FromName:     cfg.SMTP.FromName,
		FromEmail:    cfg.SMTP.FromEmail,
		Recipients:   cfg.SMTP.Recipients,
	})

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.Address)
	if err != nil {
		logger.Warnf("Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}

	// Initialize services
	snapshotService := service.NewSnapshotService(salesRepo)
	integrityService := service.NewIntegrityService()
	reportService := service.NewZReportService(
		reportRepo, workPeriodRepo, salesRepo,
		thresholdRepo, userRepo, auditRepo,
		snapshotService, integrityService,
	)
	consolidationService := service.NewConsolidationService(reportRepo, workPeriodRepo, thresholdRepo, integrityService)
	scheduleService := service.NewScheduleService(scheduleRepo, thresholdRepo)
	exportService := service.NewExportService(thermalPrinter, emailService, cfg.Export.Path, cfg.Printer.CharWidth)
	authService := service.NewAuthService(userRepo, jwtManager)

	// Start the autonomous closing trigger
	trigger := scheduler.NewScheduleTrigger(
		scheduleRepo, workPeriodRepo, userRepo, auditRepo,
		reportService, cfg.Scheduler.TickInterval, logger,
	)
	if cfg.Scheduler.Enabled {
		trigger.Start()
		defer trigger.Stop()
	}

	// Start the report delivery dispatcher
	dispatcher := scheduler.NewDispatcher(outboxRepo, reportRepo, exportService, scheduler.DispatcherConfig{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
		BackoffBase:  cfg.Outbox.BackoffBase,
		LockTimeout:  cfg.Outbox.LockTimeout,
	}, logger)
	if cfg.Outbox.Enabled {
		dispatcher.Start()
		defer dispatcher.Stop()
	}

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		ZReport:       handler.NewZReportHandler(reportService, exportService),
		Consolidation: handler.NewConsolidationHandler(consolidationService),
		Schedule:      handler.NewScheduleHandler(scheduleService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          logger,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting %s server on port %s (env: %s)", cfg.App.Name, port, cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for an interrupt, then drain in-flight requests. Finalization
	// transactions detach from the request context, so a shutdown mid-close
	// still commits or rolls back cleanly.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Forced shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
