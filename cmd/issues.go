package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sitelint/sitelint/internal/model"
	"github.com/sitelint/sitelint/internal/store"
)

var (
	issuesContentID string
	issuesRuleSlug  string
	issuesSeverity  string
	issuesIgnored   bool
	issuesLimit     int

	ignoreGlobal  bool
	ignoreBy      string
	ignoreComment string
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Inspect and manage stored issues",
}

var issuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored issues, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "scan")
		if err != nil {
			return err
		}
		defer env.Close()

		f := store.Filter{
			SiteID:    cfg.Site.ID,
			ContentID: issuesContentID,
			RuleSlug:  issuesRuleSlug,
			Severity:  model.Severity(issuesSeverity),
			Limit:     issuesLimit,
		}
		if cmd.Flags().Changed("ignored") {
			f.Ignored = &issuesIgnored
		}

		issues, err := env.Store.ListIssues(ctx, f)
		if err != nil {
			return err
		}

		if len(issues) == 0 {
			cmd.Println("no issues found")
			return nil
		}
		for _, rec := range issues {
			flag := " "
			if rec.Ignored {
				flag = "i"
			}
			cmd.Printf("%s %s  %-8s %-24s %s  %s\n",
				flag, rec.ID, rec.Severity, rec.RuleSlug, rec.ContentID, rec.Snippet)
		}
		return nil
	},
}

var issuesIgnoreCmd = &cobra.Command{
	Use:   "ignore <issue-id>",
	Short: "Mark an issue as ignored",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "scan")
		if err != nil {
			return err
		}
		defer env.Close()

		scope := model.IgnoreScopeUser
		if ignoreGlobal {
			scope = model.IgnoreScopeGlobal
		}
		if err := env.Store.SetIgnored(ctx, args[0], true, scope, ignoreBy, ignoreComment); err != nil {
			return err
		}
		env.Stats.Invalidate()
		cmd.Printf("issue %s ignored (%s)\n", args[0], scope)
		return nil
	},
}

var issuesUnignoreCmd = &cobra.Command{
	Use:   "unignore <issue-id>",
	Short: "Clear an issue's ignored state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "scan")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.SetIgnored(ctx, args[0], false, model.IgnoreScopeNone, ignoreBy, ""); err != nil {
			return err
		}
		env.Stats.Invalidate()
		cmd.Printf("issue %s unignored\n", args[0])
		return nil
	},
}

func init() {
	issuesListCmd.Flags().StringVar(&issuesContentID, "content-id", "", "filter by content id")
	issuesListCmd.Flags().StringVar(&issuesRuleSlug, "rule", "", "filter by rule slug")
	issuesListCmd.Flags().StringVar(&issuesSeverity, "severity", "", "filter by severity (error, warning, notice)")
	issuesListCmd.Flags().BoolVar(&issuesIgnored, "ignored", false, "filter by ignored state")
	issuesListCmd.Flags().IntVar(&issuesLimit, "limit", 100, "max issues to list")

	issuesIgnoreCmd.Flags().BoolVar(&ignoreGlobal, "global", false, "ignore across every content item")
	issuesIgnoreCmd.Flags().StringVar(&ignoreBy, "by", "", "reviewer recording the decision")
	issuesIgnoreCmd.Flags().StringVar(&ignoreComment, "comment", "", "why the issue is ignored")
	issuesUnignoreCmd.Flags().StringVar(&ignoreBy, "by", "", "reviewer recording the decision")

	issuesCmd.AddCommand(issuesListCmd, issuesIgnoreCmd, issuesUnignoreCmd)
	rootCmd.AddCommand(issuesCmd)
}
