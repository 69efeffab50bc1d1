package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/reconcile"
	"github.com/cleared-dev/recon/internal/results"
)

func newSummaryCommand(opts *globalOptions) *cobra.Command {
	var sessionID, file string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print monthly totals and GST for a session",
		Long: `Print monthly totals and GST for a session.

With --file the summary is read from an exported results CSV instead of the
session store, and no initialized repository is needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []model.Record
			if file != "" {
				recs, err := results.ReadFile(file)
				if err != nil {
					return err
				}
				records = recs
			} else {
				recs, err := loadSessionRecords(cmd, opts, sessionID)
				if err != nil {
					return err
				}
				records = recs
			}

			months, total := reconcile.Summarize(records)
			printSummary(cmd.OutOrStdout(), months, total)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: latest)")
	cmd.Flags().StringVar(&file, "file", "", "results CSV to summarize")
	cmd.MarkFlagsMutuallyExclusive("session", "file")

	return cmd
}

func loadSessionRecords(cmd *cobra.Command, opts *globalOptions, sessionID string) ([]model.Record, error) {
	r, err := openRepo(opts.repo)
	if err != nil {
		return nil, err
	}
	store, err := r.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ctx := cmd.Context()
	id, err := r.resolveSession(ctx, store, sessionID)
	if err != nil {
		return nil, err
	}
	snap, err := store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

func printSummary(out io.Writer, months []reconcile.MonthSummary, total reconcile.MonthSummary) {
	const row = "%-8s  %8s  %8s  %8s  %12s  %12s  %10s  %10s  %10s\n"
	fmt.Fprintf(out, row, "PERIOD", "INTERNAL", "INCOMING", "OUTGOING", "IN TOTAL", "OUT TOTAL", "GST IN", "GST OUT", "NET GST")
	for _, m := range append(months, total) {
		fmt.Fprintf(out, row, m.Period,
			fmt.Sprint(m.Internal), fmt.Sprint(m.Incoming), fmt.Sprint(m.Outgoing),
			m.IncomingTotal.StringFixed(2), m.OutgoingTotal.StringFixed(2),
			m.IncomingGST.StringFixed(2), m.OutgoingGST.StringFixed(2), m.NetGST().StringFixed(2))
	}
}
