package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/runlog"
)

func newRunsCommand(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Print the run log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(opts.repo)
			if err != nil {
				return err
			}
			entries, err := runlog.Read(r.path(r.cfg.RunLog.Path))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs logged.")
				return nil
			}

			fmt.Fprintf(out, "%-20s  %-36s  %7s  %5s  %8s  %8s  %12s  %s\n",
				"TIME", "SESSION", "RECORDS", "PAIRS", "INCOMING", "OUTGOING", "UNCLASSIFIED", "SKIPPED")
			shown := 0
			for i := len(entries) - 1; i >= 0; i-- {
				if limit > 0 && shown == limit {
					break
				}
				e := entries[i]
				fmt.Fprintf(out, "%-20s  %-36s  %7d  %5d  %8d  %8d  %12d  %s\n",
					e.Timestamp.Local().Format(time.DateTime), e.SessionID, e.Records, e.Pairs,
					e.Incoming, e.Outgoing, e.Unclassified, strings.Join(e.SkippedFiles, " "))
				shown++
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n runs (0 for all)")

	return cmd
}
