package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"orderkit/internal/domain"
	"orderkit/internal/repository"
)

var (
	// Order search flags
	searchStatus   string
	searchMember   string
	searchStrategy string
	searchOffset   int
	searchLimit    int
)

// orderCmd groups the ordering operations
var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Place, cancel and search orders",
}

// orderPlaceCmd places an order
var orderPlaceCmd = &cobra.Command{
	Use:   "place MEMBER_ID ITEM_ID COUNT",
	Short: "Place an order",
	Long: `Place an order of COUNT units of one item for a member, delivered to
the member's address. The item's current price is snapshotted into the
order line.

Examples:
  orderkit order place 1 2 3`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		memberID, err := parseID(args[0], "member id")
		if err != nil {
			return err
		}
		itemID, err := parseID(args[1], "item id")
		if err != nil {
			return err
		}
		count, err := strconv.Atoi(args[2])
		if err != nil || count <= 0 {
			return fmt.Errorf("invalid count %q", args[2])
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		orderID, err := a.orders.PlaceOrder(ctx, memberID, itemID, count)
		if err != nil {
			return err
		}

		fmt.Printf("order %d placed\n", orderID)
		return nil
	},
}

// orderCancelCmd cancels an order
var orderCancelCmd = &cobra.Command{
	Use:   "cancel ORDER_ID",
	Short: "Cancel an order and release its stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		orderID, err := parseID(args[0], "order id")
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.orders.CancelOrder(ctx, orderID); err != nil {
			return err
		}

		fmt.Printf("order %d cancelled\n", orderID)
		return nil
	},
}

// orderGetCmd shows one order
var orderGetCmd = &cobra.Command{
	Use:   "get ORDER_ID",
	Short: "Show one order with its lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		orderID, err := parseID(args[0], "order id")
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		order, err := a.orders.FindOrder(ctx, orderID)
		if err != nil {
			return err
		}

		printOrders([]*domain.Order{order})
		return nil
	},
}

// orderSearchCmd searches orders
var orderSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search orders by status and member name",
	Long: `Search orders, optionally filtered by status and member name
substring. Unset filters are omitted from the query rather than matching
nothing.

The --strategy flag selects how associations are fetched: lazy (one lookup
per association), join-base (joined base row, batched line loading) or
join-items (single collection join, de-duplicated, no pagination).

Examples:
  orderkit order search
  orderkit order search --status ORDERED --member park
  orderkit order search --strategy join-items
  orderkit order search --strategy join-base --offset 0 --limit 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		strategy := a.strategy
		if searchStrategy != "" {
			strategy, err = repository.ParseFetchStrategy(searchStrategy)
			if err != nil {
				return err
			}
		}

		search := repository.OrderSearch{MemberName: searchMember}
		if searchStatus != "" {
			status := domain.OrderStatus(searchStatus)
			search.Status = &status
		}

		var page *repository.Page
		if cmd.Flags().Changed("offset") || cmd.Flags().Changed("limit") {
			p, err := repository.NewPage(searchOffset, searchLimit)
			if err != nil {
				return err
			}
			page = p
		}

		orders, err := a.orders.SearchOrders(ctx, search, strategy, page)
		if err != nil {
			return err
		}

		printOrders(orders)
		if verbose {
			fmt.Printf("\n%d orders, %d statements (%s)\n", len(orders), a.db.QueryCount(), strategy)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.AddCommand(orderPlaceCmd, orderCancelCmd, orderGetCmd, orderSearchCmd)

	orderSearchCmd.Flags().StringVar(&searchStatus, "status", "", "Filter by order status (ORDERED, CANCELLED)")
	orderSearchCmd.Flags().StringVar(&searchMember, "member", "", "Filter by member name substring")
	orderSearchCmd.Flags().StringVar(&searchStrategy, "strategy", "", "Fetch strategy: lazy, join-base, join-items")
	orderSearchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Pagination offset")
	orderSearchCmd.Flags().IntVar(&searchLimit, "limit", repository.DefaultLimit, "Pagination limit")
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return id, nil
}

func printOrders(orders []*domain.Order) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMEMBER\tDATE\tSTATUS\tTOTAL\tLINES")
	for _, o := range orders {
		name := ""
		if o.Member != nil {
			name = o.Member.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\n",
			o.ID, name, o.OrderDate.Format("2006-01-02 15:04"), o.Status, o.TotalPrice(), len(o.Items))
		for _, line := range o.Items {
			fmt.Fprintf(w, "\t- %s\tx%d\t@%d\t=%d\t\n",
				line.Item.Label(), line.Count, line.OrderPrice, line.TotalPrice())
		}
	}
	w.Flush()
}
