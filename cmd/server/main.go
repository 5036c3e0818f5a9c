package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"bananaledger/internal/config"
	"bananaledger/internal/generator"
	"bananaledger/internal/generator/providers"
	"bananaledger/internal/handler"
	"bananaledger/internal/logger"
	"bananaledger/internal/port"
	"bananaledger/internal/repository/postgres"
	"bananaledger/internal/router"
	"bananaledger/internal/service"
	"bananaledger/internal/storage/noop"
	s3storage "bananaledger/internal/storage/s3"
)

// @title Banana Ledger API
// @version 1.0
// @description Converts platform payout statements into Banana Accounting import ledgers.
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		zlog.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log)
	zlog.Logger = log
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	correctionRepo := postgres.NewCorrectionRepo(db)

	// Initialize generators
	providers.RegisterAll()
	gen, err := generator.NewFromConfig(&cfg.Generator)
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %w", err)
	}

	// Initialize storage
	var archive port.ObjectStorage = noop.NewStorage()
	if cfg.S3.Bucket != "" {
		archive, err = s3storage.NewArchive(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("statement archive enabled")
	}

	// Initialize services
	correctionSvc := service.NewCorrectionService(correctionRepo, log)
	conversionSvc := service.NewConversionService(
		gen, correctionSvc, archive, afero.NewOsFs(), cfg.Conversion, cfg.S3, log,
	)

	// Setup router
	r := router.Setup(log, cfg.CORS.AllowedOrigins, router.Handlers{
		Statement:  handler.NewStatementHandler(conversionSvc, cfg.Conversion.MaxUploadBytes()),
		Correction: handler.NewCorrectionHandler(correctionSvc),
		Health:     handler.NewHealthHandler(db),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
