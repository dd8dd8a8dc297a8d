package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/garyjia/invoice-variants/internal/config"
	httpiface "github.com/garyjia/invoice-variants/internal/interfaces/http"
	"github.com/garyjia/invoice-variants/internal/models"
	"github.com/garyjia/invoice-variants/internal/pipeline"
	"github.com/garyjia/invoice-variants/internal/render"
	"github.com/garyjia/invoice-variants/internal/repository"
	"github.com/garyjia/invoice-variants/internal/service"
	"github.com/garyjia/invoice-variants/internal/storage"
	"github.com/garyjia/invoice-variants/pkg/database"
	"github.com/garyjia/invoice-variants/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env if present; real environment variables win
	_ = gotenv.Load()

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

	logger.Info("Starting Invoice Variant Generation Service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
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
	if err := migrator.Run(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories and storage
	batchRepo := repository.NewBatchRepository(db.DB, logger)
	if err := os.MkdirAll(cfg.Engine.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}
	folderManager := storage.NewFolderManager(cfg.Engine.OutputDir, logger)

	// Initialize document rendering
	renderer := render.NewExcelRenderer(logger)
	merger := render.NewExcelMerger(logger)

	// Initialize generation pipeline
	engine := pipeline.New(pipeline.Config{
		MaxVariants:    cfg.Engine.MaxVariants,
		MaxFluctuation: cfg.Engine.MaxFluctuation,
		Workers:        cfg.Engine.Workers,
		DefaultPolicy:  models.FailurePolicy(cfg.Engine.FailurePolicy),
	}, renderer, merger, logger)

	batchService := service.NewBatchService(engine, batchRepo, folderManager, logger)

	// Initialize HTTP server
	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, batchService, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
