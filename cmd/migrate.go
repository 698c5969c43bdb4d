package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the issue store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("scan"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}
		cmd.Printf("store migrated (%s)\n", cfg.Store.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
