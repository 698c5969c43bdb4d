package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sitelint/sitelint/internal/model"
)

var scanCmd = &cobra.Command{
	Use:   "scan <content-id>",
	Short: "Scan one content item and reconcile its issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "scan")
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Engine.Scan(ctx, args[0])
		if err != nil {
			return err
		}
		env.Stats.Invalidate()

		printScanResult(cmd, result)
		return nil
	},
}

func printScanResult(cmd *cobra.Command, result *model.ScanResult) {
	if len(result.Violations) == 0 {
		cmd.Printf("%s: clean\n", result.ContentID)
		return
	}
	cmd.Printf("%s: %d error(s), %d warning(s), %d notice(s)\n",
		result.ContentID,
		result.Count(model.SeverityError),
		result.Count(model.SeverityWarning),
		result.Count(model.SeverityNotice),
	)
	for _, v := range result.Violations {
		cmd.Printf("  [%s] %s: %s\n", v.Severity, v.RuleSlug, v.Snippet)
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
