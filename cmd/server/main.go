package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/light-bringer/pricefeed-service/internal/pkg/logging"
	"github.com/light-bringer/pricefeed-service/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Load configuration from environment variables
	config := loadConfig()
	log := logging.New(slog.LevelInfo)

	log.Info("starting pricing catalog service",
		"spanner_database", config.SpannerDB,
		"http_port", config.HTTPPort)

	// 2. Initialize service dependencies (DI container)
	serviceOpts, err := services.NewServiceOptions(ctx, config.SpannerDB, config.DataDir, log)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer serviceOpts.Close()

	// 3. Create HTTP server
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/v1/products", serviceOpts.CatalogHandler)

	httpServer := &http.Server{
		Addr:    ":" + config.HTTPPort,
		Handler: httpMux,
	}

	// 4. Start HTTP server in background
	go func() {
		log.Info("HTTP server listening", "port", config.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	// 5. Graceful shutdown handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down gracefully")

	if err := httpServer.Shutdown(context.Background()); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	return nil
}

// Config holds application configuration.
type Config struct {
	SpannerDB string
	HTTPPort  string
	DataDir   string
}

// loadConfig loads configuration from environment variables with defaults.
func loadConfig() Config {
	spannerDB := os.Getenv("SPANNER_DATABASE")
	if spannerDB == "" {
		// Default for local development with emulator
		spannerDB = "projects/test-project/instances/dev-instance/databases/pricing-catalog-db"
	}

	httpPort := os.Getenv("HTTP_PORT")
	if httpPort == "" {
		httpPort = "8080"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	return Config{
		SpannerDB: spannerDB,
		HTTPPort:  httpPort,
		DataDir:   dataDir,
	}
}
