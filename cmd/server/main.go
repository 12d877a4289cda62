package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iaisolution/invoice-reimbursement/internal/ai"
	"github.com/iaisolution/invoice-reimbursement/internal/chat"
	"github.com/iaisolution/invoice-reimbursement/internal/config"
	"github.com/iaisolution/invoice-reimbursement/internal/extraction"
	"github.com/iaisolution/invoice-reimbursement/internal/invoice"
	"github.com/iaisolution/invoice-reimbursement/internal/report"
	"github.com/iaisolution/invoice-reimbursement/internal/repository"
	"github.com/iaisolution/invoice-reimbursement/internal/retrieval"
	"github.com/iaisolution/invoice-reimbursement/internal/server"
	"github.com/iaisolution/invoice-reimbursement/pkg/database"
	"github.com/iaisolution/invoice-reimbursement/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env before viper reads the environment
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

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

	logger.Info("Starting Invoice Reimbursement System",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
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

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Pipeline components
	extractor := extraction.NewTextExtractor(logger)
	generator := ai.NewOpenAIGenerator(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.Temperature,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Timeout,
	)
	aiClient := ai.NewClient(generator, cfg.Policy, logger)
	store := retrieval.NewStore(logger)
	analysisRepo := repository.NewAnalysisRepository(db, logger)

	var reporter invoice.ReportWriter
	if cfg.Report.Enabled {
		excelWriter, err := report.NewExcelWriter(cfg.Report.OutputDir, logger)
		if err != nil {
			logger.Fatal("Failed to initialize report writer", zap.Error(err))
		}
		reporter = excelWriter
	}

	batchAnalyzer := invoice.NewBatchAnalyzer(extractor, aiClient, store, analysisRepo, reporter, logger)
	chatManager := chat.NewManager(store, aiClient, logger)

	// HTTP server
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers := server.NewHandlers(
		batchAnalyzer,
		chatManager,
		analysisRepo,
		store,
		db,
		cfg.OpenAI.APIKey != "",
		logger,
	)
	router := server.NewRouter(handlers, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
