package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/gst"
	"github.com/cleared-dev/recon/internal/matching"
)

func newSessionsCommand(opts *globalOptions) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage stored sessions",
	}
	sessionsCmd.AddCommand(
		newSessionsListCommand(opts),
		newSessionsShowCommand(opts),
		newSessionsDeleteCommand(opts),
	)
	return sessionsCmd
}

func newSessionsListCommand(opts *globalOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(opts.repo)
			if err != nil {
				return err
			}
			store, err := r.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			owner := r.cfg.Owner.Name
			if all {
				owner = ""
			}
			sessions, err := store.List(cmd.Context(), owner)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions.")
				return nil
			}
			fmt.Fprintf(out, "%-36s  %-20s  %7s  %7s  %s\n", "ID", "CREATED", "RECORDS", "PENDING", "OWNER")
			for _, s := range sessions {
				fmt.Fprintf(out, "%-36s  %-20s  %7d  %7d  %s\n",
					s.ID, s.CreatedAt.Local().Format(time.DateTime), s.Records, s.Pending, s.Owner)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include sessions of every owner")

	return cmd
}

func newSessionsShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print the records of a session (default: latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(opts.repo)
			if err != nil {
				return err
			}
			store, err := r.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var id string
			if len(args) > 0 {
				id = args[0]
			}
			ctx := cmd.Context()
			id, err = r.resolveSession(ctx, store, id)
			if err != nil {
				return err
			}
			snap, err := store.Load(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s (%s, created %s)\n\n",
				snap.Session.ID, snap.Session.Owner, snap.Session.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(out, "%5s  %-10s  %-12s  %-30s  %10s  %10s  %-12s  %-9s  %-20s  %8s\n",
				"IDX", "DATE", "ACCOUNT", "DESCRIPTION", "DEBIT", "CREDIT", "CLASS", "PAIR", "GST CATEGORY", "GST")
			for _, rec := range snap.Records {
				date := ""
				if rec.HasDate() {
					date = rec.Date.Format(time.DateOnly)
				}
				category := string(rec.GSTCategory)
				if pending, ok := snap.Pending.Get(rec.Index); ok {
					category += " -> " + string(pending)
				}
				fmt.Fprintf(out, "%5d  %-10s  %-12s  %-30s  %10s  %10s  %-12s  %-9s  %-20s  %8s\n",
					rec.Index, date, truncate(rec.Bank+" "+rec.Account, 12), truncate(rec.Description, 30),
					rec.Debit.StringFixed(2), rec.Credit.StringFixed(2), rec.Classification, rec.PairID,
					category, rec.GST.StringFixed(2))
			}

			if pairs := matching.Pairs(snap.Records); len(pairs) > 0 {
				fmt.Fprintln(out, "\nInternal transfers:")
				for _, p := range pairs {
					d, c := snap.Records[p.Debit], snap.Records[p.Credit]
					fmt.Fprintf(out, "  %s  #%d %s %s -> #%d %s %s  %s\n",
						p.ID, d.Index, d.Bank, d.Account, c.Index, c.Bank, c.Account, d.Debit.StringFixed(2))
				}
			}

			liab := gst.Compute(snap.Records)
			fmt.Fprintf(out, "\nGST collected %s, paid %s, net %s\n",
				liab.Collected.StringFixed(2), liab.Paid.StringFixed(2), liab.Net().StringFixed(2))
			if n := snap.Pending.Len(); n > 0 {
				fmt.Fprintf(out, "%d pending change(s); run 'recon submit' to apply\n", n)
			}
			return nil
		},
	}
}

func newSessionsDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session and its results file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(opts.repo)
			if err != nil {
				return err
			}
			store, err := r.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := os.Remove(r.resultsPath(args[0])); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing results file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
			return nil
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
