package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Mark jobs posted more than --days ago as inactive",
	RunE:  runCleanup,
}

var syncStatsCmd = &cobra.Command{
	Use:   "sync-stats",
	Short: "Reset every source's job counter to the number of stored jobs",
	RunE:  runSyncStats,
}

var cleanupDays int

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "Age threshold in days (default from config, 30)")
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(syncStatsCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, settings, logger, dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	days := settings.CleanupDays
	if cmd.Flags().Changed("days") {
		days = cleanupDays
	}
	res, err := a.runner.CleanupOldJobs(ctx, days)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Marked %d jobs posted before %s as inactive\n",
		res.CleanedJobs, res.Cutoff.Format(time.RFC3339))
	return nil
}

func runSyncStats(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, settings, logger, dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.runner.SyncSourceStats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated stats for %d of %d sources\n", res.SourcesUpdated, res.TotalSources)
	return nil
}
