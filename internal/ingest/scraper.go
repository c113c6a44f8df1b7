package ingest

import "context"

// Scraper is one vendor/source ingestion unit: fetch raw documents,
// normalize them, persist the result.
type Scraper interface {
	Vendor() string
	Source() string
	Run(ctx context.Context) error
}

// Filter keeps only scrapers whose "vendor:source" tag appears in only.
// An empty only keeps everything.
func Filter(scrapers []Scraper, only []string) []Scraper {
	if len(only) == 0 {
		return scrapers
	}
	wanted := make(map[string]bool, len(only))
	for _, tag := range only {
		wanted[tag] = true
	}
	var out []Scraper
	for _, s := range scrapers {
		if wanted[s.Vendor()+":"+s.Source()] {
			out = append(out, s)
		}
	}
	return out
}
