package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kalp-cg/nyayasankalan/internal/application/engine"
	"github.com/kalp-cg/nyayasankalan/internal/application/service"
	"github.com/kalp-cg/nyayasankalan/internal/config"
	"github.com/kalp-cg/nyayasankalan/internal/domain/lifecycle"
	"github.com/kalp-cg/nyayasankalan/internal/infrastructure/persistence/repository"
	"github.com/kalp-cg/nyayasankalan/internal/infrastructure/persistence/sqlite"
	"github.com/kalp-cg/nyayasankalan/internal/infrastructure/report"
	"github.com/kalp-cg/nyayasankalan/internal/infrastructure/scheduler"
	apihttp "github.com/kalp-cg/nyayasankalan/internal/interfaces/http"
	"github.com/kalp-cg/nyayasankalan/pkg/database"
	"github.com/kalp-cg/nyayasankalan/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting case lifecycle service",
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create database directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories and transaction manager
	txManager := sqlite.NewDB(db.DB, logger)
	caseRepo := repository.NewCaseRepository(db.DB, logger)
	stateRepo := repository.NewStateRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)
	assignmentRepo := repository.NewAssignmentRepository(db.DB, logger)
	submissionRepo := repository.NewSubmissionRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)

	// Initialize closure report client
	reportClient := report.NewClient(report.Config{
		BaseURL: cfg.Report.BaseURL,
		Timeout: cfg.Report.Timeout,
	}, logger)

	// Initialize the lifecycle engine
	eng := engine.New(
		lifecycle.NewCaseGraph(),
		caseRepo,
		stateRepo,
		historyRepo,
		assignmentRepo,
		submissionRepo,
		auditRepo,
		txManager,
		reportClient,
		logger,
		engine.WithMaxRetries(cfg.Engine.MaxRetries),
		engine.WithReportTimeout(cfg.Engine.ReportTimeout),
	)

	// Initialize application services
	caseService := service.NewCaseService(caseRepo, stateRepo, historyRepo, auditRepo, txManager, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, caseRepo, stateRepo, auditRepo, txManager, eng, logger)
	submissionService := service.NewSubmissionService(submissionRepo, caseRepo, auditRepo, txManager, eng, logger)

	// Start the pending-report sweep
	var sweep *scheduler.ReportSweep
	if cfg.Scheduler.Enabled {
		sweep = scheduler.NewReportSweep(caseRepo, auditRepo, reportClient, scheduler.Config{
			Schedule:  cfg.Scheduler.Schedule,
			BatchSize: cfg.Scheduler.BatchSize,
		}, logger)
		if err := sweep.Start(); err != nil {
			logger.Fatal("Failed to start report sweep", zap.Error(err))
		}
	}

	// Initialize HTTP server
	srv := apihttp.NewServer(apihttp.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JWTSecret:    cfg.Auth.JWTSecret,
	}, eng, caseService, assignmentService, submissionService, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sweep != nil {
		sweep.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
