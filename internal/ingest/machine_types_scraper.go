package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/contracts"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/synth"
	"github.com/light-bringer/pricefeed-service/internal/pkg/committer"
)

// machineTypesDocument is the staged output of the compute API fetcher:
// machine type shapes grouped per region.
type machineTypesDocument struct {
	Regions []struct {
		Name         string              `json:"name"`
		MachineTypes []synth.MachineType `json:"machine_types"`
	} `json:"regions"`
}

// MachineTypesScraper derives machine type prices from component rates the
// catalog scraper committed earlier in the run. It must be registered
// after the gcp catalog unit.
type MachineTypesScraper struct {
	docs        DocumentSource
	synthesizer *synth.Synthesizer
	repo        contracts.CatalogRepository
	committer   *committer.Committer
	log         *slog.Logger
}

// NewMachineTypesScraper creates a MachineTypesScraper.
func NewMachineTypesScraper(docs DocumentSource, synthesizer *synth.Synthesizer, repo contracts.CatalogRepository, comm *committer.Committer, log *slog.Logger) *MachineTypesScraper {
	return &MachineTypesScraper{
		docs:        docs,
		synthesizer: synthesizer,
		repo:        repo,
		committer:   comm,
		log:         log.With("vendor", VendorGCP, "source", SourceMachineTypes),
	}
}

func (s *MachineTypesScraper) Vendor() string { return VendorGCP }
func (s *MachineTypesScraper) Source() string { return SourceMachineTypes }

func (s *MachineTypesScraper) Run(ctx context.Context) error {
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

func (s *MachineTypesScraper) processDocument(ctx context.Context, doc RawDocument) error {
	var parsed machineTypesDocument
	if err := json.Unmarshal(doc.Body, &parsed); err != nil {
		s.log.Error("skipping malformed document", "document", doc.Name, "error", err)
		return nil
	}

	plan := committer.NewPlan()
	derived, skipped := 0, 0
	for _, region := range parsed.Regions {
		for _, mt := range region.MachineTypes {
			product := s.synthesizer.Product(region.Name, mt)
			for _, option := range []string{synth.PurchaseOptionOnDemand, synth.PurchaseOptionPreemptible} {
				price, err := s.synthesizer.Price(ctx, product, mt, option)
				if err != nil {
					return fmt.Errorf("deriving price for %s: %w", mt.Name, err)
				}
				if price == nil {
					skipped++
					continue
				}
				product.Prices = append(product.Prices, *price)
				derived++
			}

			mut, err := s.repo.UpsertProductMut(product)
			if err != nil {
				s.log.Error("skipping machine type", "machine_type", mt.Name, "error", err)
				continue
			}
			plan.Add(mut)
			for i := range product.Prices {
				mut, err := s.repo.UpsertPriceMut(&product.Prices[i])
				if err != nil {
					s.log.Error("skipping derived price", "machine_type", mt.Name, "error", err)
					continue
				}
				plan.Add(mut)
			}
		}
	}

	if plan.IsEmpty() {
		s.log.Info("document produced no mutations", "document", doc.Name)
		return nil
	}
	if err := s.committer.Apply(ctx, plan); err != nil {
		return fmt.Errorf("committing %s: %w", doc.Name, err)
	}
	s.log.Info("machine types ingested",
		"document", doc.Name,
		"prices_derived", derived,
		"prices_skipped", skipped)
	return nil
}
