package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobtracker/internal/observability"
	"github.com/jonathan/jobtracker/internal/orchestrator"
	"github.com/jonathan/jobtracker/internal/types"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape one source or every due source once",
	Long: `Scrape a single source with --source, or every active source whose scrape
interval has elapsed when --source is omitted.

A single-source run honors the scrape interval unless --sync is given, in which case
it runs immediately and the command fails when the run fails.`,
	RunE: runScrape,
}

var (
	scrapeSource      string
	scrapeMaxJobs     int
	scrapeSync        bool
	scrapeListSources bool
)

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeSource, "source", "s", "", "Source name to scrape (default: all active sources)")
	scrapeCmd.Flags().IntVar(&scrapeMaxJobs, "max-jobs", 0, "Maximum detail pages per source (default from config)")
	scrapeCmd.Flags().BoolVar(&scrapeSync, "sync", false, "Run the source now regardless of its scrape interval")
	scrapeCmd.Flags().BoolVar(&scrapeListSources, "list-sources", false, "List configured sources and exit")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, settings, logger, dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if scrapeListSources {
		sources, err := a.store.ListSources(ctx, false)
		if err != nil {
			return fmt.Errorf("failed to list sources: %w", err)
		}
		printSources(out, sources)
		return nil
	}

	var results []types.RunResult
	if scrapeSource != "" {
		result, err := a.runner.RunSource(ctx, scrapeSource, orchestrator.RunOptions{
			MaxJobs: scrapeMaxJobs,
			Force:   scrapeSync,
		})
		results = append(results, *result)
		report(out, a, results)
		if err != nil && scrapeSync {
			return err
		}
		return nil
	}

	results, err = a.runner.ScrapeAll(ctx)
	if err != nil {
		return err
	}
	report(out, a, results)

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(results))
	}
	return nil
}

// report prints run results, and in dry-run mode the jobs held in memory.
// Verbose mode uses boxed summaries instead of tables.
func report(out io.Writer, a *app, results []types.RunResult) {
	if !settings.Verbose {
		printResults(out, results)
		if a.mem != nil {
			printJobs(out, a.mem.Jobs())
		}
		return
	}
	printer := observability.NewPrinter(out)
	for i := range results {
		printer.PrintRunResult(&results[i])
	}
	if a.mem != nil {
		printer.PrintJobs(a.mem.Jobs())
	}
}
