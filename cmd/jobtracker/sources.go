package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobtracker/internal/orchestrator"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage configured job sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job sources with their counters",
	RunE:  runSourcesList,
}

var sourcesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create or update sources from the sources file",
	Long: `Validate the sources file against the embedded JSON schema and upsert every entry
by name. Counters and last-scraped timestamps of existing sources are kept.`,
	RunE: runSourcesSeed,
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesSeedCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, settings, logger, dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	sources, err := a.store.ListSources(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	printSources(cmd.OutOrStdout(), sources)
	return nil
}

func runSourcesSeed(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	seeds, err := loadSeedSources(settings.SourcesFile)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, settings, logger, dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	seeded, err := orchestrator.SeedSources(ctx, a.store, seeds)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d sources from %s\n", len(seeded), settings.SourcesFile)
	printSources(cmd.OutOrStdout(), seeded)
	return nil
}
