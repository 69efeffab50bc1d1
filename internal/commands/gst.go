package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/recon/internal/gst"
	"github.com/cleared-dev/recon/internal/model"
)

func newGSTCommand() *cobra.Command {
	var rate string

	cmd := &cobra.Command{
		Use:   "gst <debit> <credit> <category>",
		Short: "Compute the GST contained in a transaction",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			debit, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("debit %q: %w", args[0], err)
			}
			credit, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("credit %q: %w", args[1], err)
			}
			category, ok := model.ParseGSTCategory(args[2])
			if !ok {
				return fmt.Errorf("%w: %q; one of %s", gst.ErrUnknownCategory, args[2], categoryList())
			}
			r, err := decimal.NewFromString(rate)
			if err != nil {
				return fmt.Errorf("rate %q: %w", rate, err)
			}

			value := gst.NewCalculator(r).Value(debit, credit, category)
			fmt.Fprintln(cmd.OutOrStdout(), value.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&rate, "rate", gst.DefaultRate.String(), "GST rate")

	return cmd
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List GST categories and the description keywords that select them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, c := range model.GSTCategories() {
				kws := gst.Keywords(c)
				if len(kws) == 0 {
					fmt.Fprintf(out, "%-20s  (no keyword match)\n", c)
					continue
				}
				fmt.Fprintf(out, "%-20s  %s\n", c, strings.Join(kws, ", "))
			}
			return nil
		},
	}
}
