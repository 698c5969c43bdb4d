package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sitelint/sitelint/internal/model"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print site-wide issue counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "scan")
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := env.Stats.Summary(ctx, cfg.Site.ID)
		if err != nil {
			return err
		}

		printStats(cmd, stats)
		return nil
	},
}

func printStats(cmd *cobra.Command, stats *model.Stats) {
	cmd.Printf("site %s\n", stats.SiteID)
	cmd.Printf("  errors:         %d\n", stats.Errors)
	cmd.Printf("  warnings:       %d\n", stats.Warnings)
	cmd.Printf("  notices:        %d\n", stats.Notices)
	cmd.Printf("  ignored:        %d\n", stats.Ignored)
	cmd.Printf("  posts scanned:  %d\n", stats.PostsScanned)
	cmd.Printf("  passed tests:   %d\n", stats.PassedTests)
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
