package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/contracts"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/domain"
	"github.com/light-bringer/pricefeed-service/internal/pkg/committer"
)

// Normalizer turns one raw vendor document into canonical products.
type Normalizer interface {
	Normalize(body []byte) ([]*domain.Product, error)
}

// CatalogScraper ingests one vendor price catalog: fetch documents from a
// source, normalize each, and commit the resulting mutations atomically
// per document.
type CatalogScraper struct {
	vendor     string
	source     string
	docs       DocumentSource
	normalizer Normalizer
	repo       contracts.CatalogRepository
	committer  *committer.Committer
	log        *slog.Logger
}

// NewCatalogScraper creates a CatalogScraper for one vendor/source pair.
func NewCatalogScraper(vendor, source string, docs DocumentSource, normalizer Normalizer, repo contracts.CatalogRepository, comm *committer.Committer, log *slog.Logger) *CatalogScraper {
	return &CatalogScraper{
		vendor:     vendor,
		source:     source,
		docs:       docs,
		normalizer: normalizer,
		repo:       repo,
		committer:  comm,
		log:        log.With("vendor", vendor, "source", source),
	}
}

func (s *CatalogScraper) Vendor() string { return s.vendor }
func (s *CatalogScraper) Source() string { return s.source }

// Run processes every available document. A document that fails to
// normalize is logged and skipped; a commit failure fails the unit.
func (s *CatalogScraper) Run(ctx context.Context) error {
	docs, err := s.docs.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching documents: %w", err)
	}
	if len(docs) == 0 {
		s.log.Info("no documents to ingest")
		return nil
	}

	for _, doc := range docs {
		if err := s.processDocument(ctx, doc); err != nil {
			return err
		}
		if err := s.docs.Done(ctx, doc.Name); err != nil {
			s.log.Warn("could not retire document", "document", doc.Name, "error", err)
		}
	}
	return nil
}

func (s *CatalogScraper) processDocument(ctx context.Context, doc RawDocument) error {
	products, err := s.normalizer.Normalize(doc.Body)
	if err != nil {
		s.log.Error("skipping malformed document", "document", doc.Name, "error", err)
		return nil
	}

	plan := committer.NewPlan()
	for _, product := range products {
		if err := s.planProduct(plan, product); err != nil {
			s.log.Error("skipping product", "product_hash", product.ProductHash, "error", err)
		}
	}
	if plan.IsEmpty() {
		s.log.Info("document produced no mutations", "document", doc.Name)
		return nil
	}

	if err := s.committer.Apply(ctx, plan); err != nil {
		return fmt.Errorf("committing %s: %w", doc.Name, err)
	}
	s.log.Info("document ingested",
		"document", doc.Name,
		"products", len(products),
		"mutations", plan.Count())
	return nil
}

func (s *CatalogScraper) planProduct(plan *committer.CommitPlan, product *domain.Product) error {
	mut, err := s.repo.UpsertProductMut(product)
	if err != nil {
		return err
	}
	plan.Add(mut)
	for i := range product.Prices {
		mut, err := s.repo.UpsertPriceMut(&product.Prices[i])
		if err != nil {
			return err
		}
		plan.Add(mut)
	}
	return nil
}
