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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/timmy/mediagrid/internal/api"
	"github.com/timmy/mediagrid/internal/config"
	"github.com/timmy/mediagrid/internal/gallery"
	"github.com/timmy/mediagrid/internal/logger"
	"github.com/timmy/mediagrid/internal/metrics"
	"github.com/timmy/mediagrid/internal/source/pexels"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize logger first; APP_ENV decides whether a rotated file is written
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid config")
	}

	// Initialize provider
	provider, err := pexels.NewClient(&pexels.Config{
		APIKey:  cfg.Pexels.APIKey,
		BaseURL: cfg.Pexels.BaseURL,
		Timeout: cfg.Pexels.Timeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize provider")
	}

	// Initialize metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize gallery
	fetcher := gallery.NewFetcher(provider, cfg.Gallery.PageSize, m)
	registry := gallery.NewRegistry(fetcher, gallery.RegistryConfig{
		Controller: gallery.ControllerConfig{
			MaxItems:     cfg.Gallery.MaxItems,
			FetchTimeout: cfg.Gallery.FetchTimeout,
		},
		ViewTTL: cfg.Gallery.ViewTTL,
	}, m)
	defer registry.CloseAll()

	// Setup router
	router := api.SetupRouter(api.Dependencies{
		Registry: registry,
		Provider: provider,
		Metrics:  m,
		Logger:   appLogger,
	}, cfg.Server)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.WithFields(logger.Fields{
			"port":      cfg.Server.Port,
			"mode":      cfg.Server.Mode,
			"provider":  provider.GetDisplayName(),
			"page_size": cfg.Gallery.PageSize,
			"max_items": cfg.Gallery.MaxItems,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		registry.Run(gctx, cfg.Gallery.SweepEvery)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.WithError(err).Error("Server stopped with error")
		return
	}

	appLogger.Info("Server exited")
}
