package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sitelint/sitelint/internal/engine"
)

var reapCmd = &cobra.Command{
	Use:   "reap",
	Short: "Delete issues whose content item no longer exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "reap")
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.newReaper().Run(ctx)
		if err != nil {
			return err
		}
		if report.Deleted > 0 {
			env.Stats.Invalidate()
		}

		printReport(cmd, report)
		return nil
	},
}

func printReport(cmd *cobra.Command, report engine.Report) {
	cmd.Printf("checked %d content item(s): deleted %d issue(s), skipped %d\n",
		report.Checked, report.Deleted, report.Skipped)
}

func init() {
	rootCmd.AddCommand(reapCmd)
}
