package ingest

import (
	"log/slog"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/contracts"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/normalize"
	"github.com/light-bringer/pricefeed-service/internal/app/catalog/synth"
	"github.com/light-bringer/pricefeed-service/internal/pkg/clock"
	"github.com/light-bringer/pricefeed-service/internal/pkg/committer"
)

// Vendor and source tags, as accepted by the run --only flag.
const (
	VendorGCP   = normalize.VendorGCP
	VendorAWS   = normalize.VendorAWS
	VendorAzure = normalize.VendorAzure

	SourceCatalog      = "catalog"
	SourceBulk         = "bulk"
	SourceRetail       = "retail"
	SourceMachineTypes = "machine-types"
)

// Config carries the ingestion wiring knobs.
type Config struct {
	// DataDir is where the vendor fetchers stage raw documents.
	DataDir string
}

// Registry returns every configured scraper in run order. The machine
// types unit goes last: it reads component rates the gcp catalog unit
// commits.
func Registry(cfg Config, repo contracts.CatalogRepository, comm *committer.Committer, clk clock.Clock, log *slog.Logger) []Scraper {
	synthesizer := synth.NewSynthesizer(repo, clk, log)

	return []Scraper{
		NewCatalogScraper(VendorAWS, SourceBulk,
			NewDirSource(cfg.DataDir, "aws-bulk-*.json"),
			normalize.NewAWS(log), repo, comm, log),
		NewCatalogScraper(VendorAzure, SourceRetail,
			NewDirSource(cfg.DataDir, "azure-retail-*.json"),
			normalize.NewAzure(log), repo, comm, log),
		NewCatalogScraper(VendorGCP, SourceCatalog,
			NewDirSource(cfg.DataDir, "gcp-catalog-*.json"),
			normalize.NewGCP(log), repo, comm, log),
		NewMachineTypesScraper(
			NewDirSource(cfg.DataDir, "gcp-machine-types-*.json"),
			synthesizer, repo, comm, log),
	}
}
