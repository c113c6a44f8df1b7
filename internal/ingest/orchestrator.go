package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// UnitResult is the outcome of one scraper unit.
type UnitResult struct {
	RunID    uuid.UUID
	Vendor   string
	Source   string
	Err      error
	Duration time.Duration
}

// Report collects the results of a full run.
type Report struct {
	Results []UnitResult
}

// Failed reports whether any unit failed.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return true
		}
	}
	return false
}

// Runner executes scraper units in order. A unit failure is recorded and
// the run moves on; only context cancellation stops the run between
// units. Units must not run mid-unit after cancel, but a started unit is
// allowed to finish.
type Runner struct {
	log *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(log *slog.Logger) *Runner {
	return &Runner{log: log}
}

// Run executes every scraper sequentially and returns the per-unit report.
// Synthesis units that read reference rates rely on this ordering.
func (r *Runner) Run(ctx context.Context, scrapers []Scraper) *Report {
	report := &Report{}
	for _, s := range scrapers {
		if err := ctx.Err(); err != nil {
			r.log.Warn("run cancelled, skipping remaining units", "error", err)
			break
		}

		runID := uuid.New()
		log := r.log.With(
			"vendor", s.Vendor(),
			"source", s.Source(),
			"run_id", runID,
		)

		log.Info("starting scraper unit")
		start := time.Now()
		err := s.Run(ctx)
		elapsed := time.Since(start)

		if err != nil {
			log.Error("scraper unit failed", "error", err, "duration", elapsed)
		} else {
			log.Info("scraper unit finished", "duration", elapsed)
		}

		report.Results = append(report.Results, UnitResult{
			RunID:    runID,
			Vendor:   s.Vendor(),
			Source:   s.Source(),
			Err:      err,
			Duration: elapsed,
		})
	}
	return report
}
