package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/gst"
	"github.com/cleared-dev/recon/internal/model"
)

func newOverrideCommand(opts *globalOptions) *cobra.Command {
	var sessionID string
	var remove bool

	cmd := &cobra.Command{
		Use:   "override <index> [category]",
		Short: "Stage a GST category change for one record",
		Long: `Stage a GST category change for one record of a session.

Changes stay pending until 'recon submit'. A later override of the same
record replaces the earlier one; --remove drops it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index %q: %w", args[0], err)
			}

			var category model.GSTCategory
			if !remove {
				if len(args) != 2 {
					return fmt.Errorf("category is required; one of %s (see 'recon categories')", categoryList())
				}
				c, ok := model.ParseGSTCategory(args[1])
				if !ok {
					return fmt.Errorf("%w: %q; one of %s", gst.ErrUnknownCategory, args[1], categoryList())
				}
				category = c
			}

			r, err := openRepo(opts.repo)
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
			if index < 0 || index >= len(snap.Records) {
				return fmt.Errorf("index %d out of range (session has %d records)", index, len(snap.Records))
			}

			out := cmd.OutOrStdout()
			if remove {
				snap.Pending.Delete(index)
				fmt.Fprintf(out, "Dropped pending change for record %d\n", index)
			} else {
				snap.Pending.Set(index, category)
				fmt.Fprintf(out, "Record %d: %s -> %s (pending)\n", index, snap.Records[index].GSTCategory, category)
			}
			if err := store.SavePending(ctx, id, snap.Pending); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d pending change(s) in session %s\n", snap.Pending.Len(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: latest)")
	cmd.Flags().BoolVar(&remove, "remove", false, "drop the pending change for the record")

	return cmd
}

func categoryList() string {
	cats := model.GSTCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = strconv.Quote(string(c))
	}
	return strings.Join(names, ", ")
}
