package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/jobtracker/internal/orchestrator"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scrape-all, cleanup and stats sync on their cron schedules",
	Long: `Start the long-running scheduler. Specs come from the "schedule" section of the
config file and default to hourly scrapes, a daily cleanup at 02:00 UTC and a stats
sync every six hours. Stops on SIGINT or SIGTERM after running jobs finish.`,
	RunE: runSchedule,
}

var scheduleRunNow bool

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleRunNow, "run-now", false, "Run one scrape-all pass immediately on start")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(_ *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, settings, logger, dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	scheduler := orchestrator.NewScheduler(a.runner, orchestrator.ScheduleConfig{
		ScrapeAll:   settings.Schedule.ScrapeAll,
		Cleanup:     settings.Schedule.Cleanup,
		SyncStats:   settings.Schedule.SyncStats,
		CleanupDays: settings.CleanupDays,
		RunOnStart:  scheduleRunNow,
	}, logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down scheduler")
	scheduler.Stop()
	return nil
}
