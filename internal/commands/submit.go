package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/gst"
	"github.com/cleared-dev/recon/internal/model"
)

func newSubmitCommand(opts *globalOptions) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Apply pending GST category changes to a session",
		Long: `Apply pending GST category changes to a session.

Accepted changes are merged into the session results and the results file is
rewritten. Rejected changes are reported and stay pending.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(opts.repo)
			if err != nil {
				return err
			}
			calc, err := r.calculator()
			if err != nil {
				return err
			}
			store, err := r.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			id, err := r.resolveSession(ctx, store, sessionID)
			if err != nil {
				return err
			}
			snap, err := store.Load(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if snap.Pending.Len() == 0 {
				fmt.Fprintln(out, "No pending changes.")
				return nil
			}

			res := snap.Pending.Apply(calc, snap.Records)

			remaining := gst.NewOverlay()
			for _, rej := range res.Rejected {
				if c, ok := snap.Pending.Get(rej.Index); ok {
					remaining.Set(rej.Index, c)
				}
			}

			var changed []model.Record
			if len(res.Applied) > 0 {
				changed = res.Records
			}
			if err := store.Submit(ctx, id, changed, remaining); err != nil {
				return err
			}

			snap.Records = res.Records
			if err := r.exportResults(snap); err != nil {
				return err
			}

			fmt.Fprintf(out, "Applied %d change(s) to session %s\n", len(res.Applied), id)
			for _, rej := range res.Rejected {
				fmt.Fprintf(out, "  rejected %s\n", rej.Error())
			}
			liab := gst.Compute(res.Records)
			fmt.Fprintf(out, "GST collected %s, paid %s, net %s\n",
				liab.Collected.StringFixed(2), liab.Paid.StringFixed(2), liab.Net().StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: latest)")

	return cmd
}
