// Pricing catalog scraper CLI.
//
// Usage:
//
//	scraper run [--only vendor:source,...]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/light-bringer/pricefeed-service/internal/ingest"
	"github.com/light-bringer/pricefeed-service/internal/pkg/logging"
	"github.com/light-bringer/pricefeed-service/internal/services"
)

func main() {
	app := &cli.App{
		Name:  "scraper",
		Usage: "Ingest vendor pricing catalogs into the canonical store",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "spanner-database",
				Value:   "projects/test-project/instances/dev-instance/databases/pricing-catalog-db",
				Usage:   "Full Spanner database path",
				EnvVars: []string{"SPANNER_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   "data",
				Usage:   "Directory with staged raw vendor documents",
				EnvVars: []string{"SCRAPER_DATA_DIR"},
			},
		},

		Commands: []*cli.Command{
			runCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run all configured scrapers, or a subset",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "only",
				Usage: "Restrict the run to vendor:source units (e.g. gcp:catalog)",
			},
		},
		Action: func(c *cli.Context) error {
			log := logging.New(slog.LevelInfo)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts, err := services.NewServiceOptions(ctx, c.String("spanner-database"), c.String("data-dir"), log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("initializing: %v", err), 1)
			}
			defer opts.Close()

			scrapers := ingest.Filter(opts.Scrapers, c.StringSlice("only"))
			if len(scrapers) == 0 {
				return cli.Exit("no scrapers match the --only selection", 1)
			}

			report := ingest.NewRunner(log).Run(ctx, scrapers)
			for _, result := range report.Results {
				if result.Err != nil {
					log.Error("unit failed", "vendor", result.Vendor, "source", result.Source, "error", result.Err)
				}
			}
			if report.Failed() {
				return cli.Exit("one or more scraper units failed", 1)
			}
			log.Info("run complete", "units", len(report.Results))
			return nil
		},
	}
}
