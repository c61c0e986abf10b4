package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/planachat/backend/config"
	"github.com/planachat/backend/internal/app"
	httpDelivery "github.com/planachat/backend/internal/delivery/http"
	"github.com/planachat/backend/internal/infrastructure/metrics"
	"github.com/planachat/backend/internal/logger"
	"github.com/planachat/backend/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "planachat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnvFile(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting PlanAchat backend",
		logger.String("version", httpDelivery.Version),
		logger.String("environment", cfg.Server.Environment),
		logger.String("port", cfg.Server.Port),
		logger.String("cache_type", cfg.Cache.Type),
		logger.Duration("cache_ttl", cfg.Cache.TTL),
		logger.Int("relays", len(cfg.Relay.Endpoints)),
	)

	// Initialize infrastructure dependencies
	resultCache, err := app.NewCache(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer resultCache.Close()

	recorder := metrics.NewRecorder()
	sites := usecase.DefaultSiteRegistry()

	// Initialize usecase layer
	extraction := app.NewExtractionService(cfg, nil, sites, log, recorder)
	products := usecase.NewProductService(resultCache, extraction, usecase.ProductServiceConfig{
		CacheTTL:       cfg.Cache.TTL,
		ExtractTimeout: cfg.Server.ExtractTimeout,
		Logger:         log,
	})

	handler := httpDelivery.NewHandler(products, sites, httpDelivery.HandlerConfig{
		ExtractTimeout: cfg.Server.ExtractTimeout,
		Logger:         log,
	})
	router := httpDelivery.SetupRouter(cfg, handler, log, recorder.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.ExtractTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server forced to shutdown", logger.Error(err))
	}

	log.Info("Server exited")
	return nil
}
