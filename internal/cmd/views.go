package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"orderkit/internal/domain"
	"orderkit/internal/repository"
	"orderkit/internal/repository/orderquery"
)

var viewMode string

// viewCmd renders the read-model projections
var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Render order read models",
	Long: `Render flattened order projections without hydrating aggregates.

The --mode flag selects how lines are resolved: summaries (no lines, one
query), naive (one line query per order), batched (IN-batched line
queries) or flat (single denormalized query regrouped in memory).

Examples:
  orderkit view
  orderkit view --mode flat --member park`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		search := repository.OrderSearch{MemberName: searchMember}
		if searchStatus != "" {
			status := domain.OrderStatus(searchStatus)
			search.Status = &status
		}

		var views []orderquery.OrderView
		switch viewMode {
		case "summaries":
			summaries, err := a.queries.FindSummaries(ctx, search, nil)
			if err != nil {
				return err
			}
			printSummaries(summaries)
			return nil
		case "naive":
			views, err = a.queries.FindViews(ctx, search)
		case "batched":
			views, err = a.queries.FindViewsBatched(ctx, search)
		case "flat":
			var rows []orderquery.FlatRow
			rows, err = a.queries.FindFlatRows(ctx, search)
			if err == nil {
				views = orderquery.Reconcile(rows)
			}
		default:
			return fmt.Errorf("unknown view mode %q (want summaries, naive, batched or flat)", viewMode)
		}
		if err != nil {
			return err
		}

		printViews(views)
		if verbose {
			fmt.Printf("\n%d views, %d statements (%s)\n", len(views), a.db.QueryCount(), viewMode)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringVar(&viewMode, "mode", "batched", "Line resolution: summaries, naive, batched, flat")
	viewCmd.Flags().StringVar(&searchStatus, "status", "", "Filter by order status (ORDERED, CANCELLED)")
	viewCmd.Flags().StringVar(&searchMember, "member", "", "Filter by member name substring")
}

func printSummaries(summaries []orderquery.OrderSummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMEMBER\tDATE\tSTATUS\tCITY")
	for _, s := range summaries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			s.OrderID, s.MemberName, s.OrderDate.Format("2006-01-02 15:04"), s.Status, s.Address.City)
	}
	w.Flush()
}

func printViews(views []orderquery.OrderView) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMEMBER\tDATE\tSTATUS\tLINES")
	for _, v := range views {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
			v.OrderID, v.MemberName, v.OrderDate.Format("2006-01-02 15:04"), v.Status, len(v.Items))
		for _, line := range v.Items {
			fmt.Fprintf(w, "\t- %s\tx%d\t@%d\t\n", line.ItemName, line.Count, line.OrderPrice)
		}
	}
	w.Flush()
}
