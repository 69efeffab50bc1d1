package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/buildinfo"
	"github.com/cleared-dev/recon/internal/logger"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	repo    string
	verbose bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "recon",
		Short:   "Bank statement reconciliation and GST categorization",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log := logger.NewConsole(cmd.ErrOrStderr(), logger.Level(opts.verbose))
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.repo, "repo", ".", "repository directory")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newInitCommand(),
		newRunCommand(opts),
		newOverrideCommand(opts),
		newSubmitCommand(opts),
		newSessionsCommand(opts),
		newSummaryCommand(opts),
		newGSTCommand(),
		newCategoriesCommand(),
		newRunsCommand(opts),
	)

	return rootCmd
}
