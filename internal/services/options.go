package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/contracts"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/queries"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/repo"
	"github.com/light-bringer/pricefeed-service/internal/ingest"
	"github.com/light-bringer/pricefeed-service/internal/pkg/clock"
	"github.com/light-bringer/pricefeed-service/internal/pkg/committer"
	transporthttp "github.com/light-bringer/pricefeed-service/internal/transport/http"
)

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	SpannerClient  *spanner.Client
	Repo           contracts.CatalogRepository
	Committer      *committer.Committer
	Clock          clock.Clock
	Queries        *queries.Service
	Scrapers       []ingest.Scraper
	CatalogHandler *transporthttp.CatalogHandler
	Logger         *slog.Logger
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(ctx context.Context, spannerDB, dataDir string, log *slog.Logger) (*ServiceOptions, error) {
	// 1. Initialize Spanner client
	spannerClient, err := spanner.NewClient(ctx, spannerDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spanner client: %w", err)
	}

	// 2. Create infrastructure components
	clk := clock.NewRealClock()
	comm := committer.NewCommitter(spannerClient)

	// 3. Create the catalog repository
	catalogRepo := repo.NewCatalogRepo(spannerClient)

	// 4. Read side
	queryService := queries.NewService(catalogRepo)
	catalogHandler := transporthttp.NewCatalogHandler(queryService, log)

	// 5. Ingestion units
	scrapers := ingest.Registry(ingest.Config{DataDir: dataDir}, catalogRepo, comm, clk, log)

	return &ServiceOptions{
		SpannerClient:  spannerClient,
		Repo:           catalogRepo,
		Committer:      comm,
		Clock:          clk,
		Queries:        queryService,
		Scrapers:       scrapers,
		CatalogHandler: catalogHandler,
		Logger:         log,
	}, nil
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.SpannerClient != nil {
		s.SpannerClient.Close()
	}
}
