package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	vendor string
	source string
	err    error
	runs   int
	onRun  func()
}

func (f *fakeScraper) Vendor() string { return f.vendor }
func (f *fakeScraper) Source() string { return f.source }
func (f *fakeScraper) Run(context.Context) error {
	f.runs++
	if f.onRun != nil {
		f.onRun()
	}
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFilter(t *testing.T) {
	scrapers := []Scraper{
		&fakeScraper{vendor: "aws", source: "bulk"},
		&fakeScraper{vendor: "gcp", source: "catalog"},
		&fakeScraper{vendor: "gcp", source: "machine-types"},
	}

	t.Run("empty keeps all", func(t *testing.T) {
		assert.Len(t, Filter(scrapers, nil), 3)
	})

	t.Run("selects by vendor:source", func(t *testing.T) {
		got := Filter(scrapers, []string{"gcp:catalog", "aws:bulk"})
		require.Len(t, got, 2)
		assert.Equal(t, "aws", got[0].Vendor())
		assert.Equal(t, "gcp", got[1].Vendor())
	})

	t.Run("unknown tag selects nothing", func(t *testing.T) {
		assert.Empty(t, Filter(scrapers, []string{"gcp:buckets"}))
	})
}

func TestRunnerContinuesPastFailures(t *testing.T) {
	first := &fakeScraper{vendor: "aws", source: "bulk", err: errors.New("bulk file corrupt")}
	second := &fakeScraper{vendor: "gcp", source: "catalog"}
	runner := NewRunner(discardLogger())

	report := runner.Run(context.Background(), []Scraper{first, second})

	assert.Equal(t, 1, first.runs)
	assert.Equal(t, 1, second.runs)
	require.Len(t, report.Results, 2)
	assert.Error(t, report.Results[0].Err)
	assert.NoError(t, report.Results[1].Err)
	assert.True(t, report.Failed())
	assert.NotEqual(t, report.Results[0].RunID, report.Results[1].RunID)
}

func TestRunnerAllSuccess(t *testing.T) {
	runner := NewRunner(discardLogger())

	report := runner.Run(context.Background(), []Scraper{
		&fakeScraper{vendor: "aws", source: "bulk"},
		&fakeScraper{vendor: "azure", source: "retail"},
	})

	assert.False(t, report.Failed())
	assert.Len(t, report.Results, 2)
}

func TestRunnerStopsBetweenUnitsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &fakeScraper{vendor: "aws", source: "bulk", onRun: cancel}
	second := &fakeScraper{vendor: "gcp", source: "catalog"}
	runner := NewRunner(discardLogger())

	report := runner.Run(ctx, []Scraper{first, second})

	assert.Equal(t, 1, first.runs)
	assert.Equal(t, 0, second.runs)
	assert.Len(t, report.Results, 1)
}
