package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show job totals and the last cached run of every source",
	RunE:  runStatus,
}

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, settings, logger, dryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	status, err := a.runner.Status(ctx)
	if err != nil {
		return err
	}
	if statusJSON {
		return printJSON(cmd.OutOrStdout(), status)
	}
	printStatus(cmd.OutOrStdout(), status)
	return nil
}
