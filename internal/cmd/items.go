package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"orderkit/internal/domain"
)

var (
	// Item flags
	itemPrice  int
	itemStock  int
	itemAuthor string
	itemISBN   string
	itemArtist string
)

// itemCmd groups the catalog operations
var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage the item catalog",
}

// itemAddCmd adds a catalog item
var itemAddCmd = &cobra.Command{
	Use:   "add KIND NAME",
	Short: "Add a book or album to the catalog",
	Long: `Add an item to the catalog. KIND is book or album; each kind takes
its own detail flags.

Examples:
  orderkit item add book "Clean Code" --price 10000 --stock 100 --author "Robert C. Martin" --isbn 978-0132350884
  orderkit item add album "Abbey Road" --price 15000 --stock 50 --artist "The Beatles"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var item *domain.Item
		switch domain.ItemKind(args[0]) {
		case domain.KindBook:
			item = domain.NewBook(args[1], itemPrice, itemStock, itemAuthor, itemISBN)
		case domain.KindAlbum:
			item = domain.NewAlbum(args[1], itemPrice, itemStock, itemArtist)
		default:
			return fmt.Errorf("unknown item kind %q (want book or album)", args[0])
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.items.SaveItem(ctx, item)
		if err != nil {
			return err
		}

		fmt.Printf("item %d added\n", id)
		return nil
	},
}

// itemUpdateCmd updates an item
var itemUpdateCmd = &cobra.Command{
	Use:   "update ITEM_ID NAME",
	Short: "Update an item's name, price and stock",
	Long: `Write a new name, price and stock quantity for an existing item.
The command states the whole new state; unchanged values must be repeated.

Examples:
  orderkit item update 1 "Clean Code, 2nd ed." --price 12000 --stock 80`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseID(args[0], "item id")
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.items.UpdateItem(ctx, id, args[1], itemPrice, itemStock); err != nil {
			return err
		}

		fmt.Printf("item %d updated\n", id)
		return nil
	},
}

// itemRestockCmd raises an item's stock
var itemRestockCmd = &cobra.Command{
	Use:   "restock ITEM_ID QUANTITY",
	Short: "Raise an item's stock quantity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseID(args[0], "item id")
		if err != nil {
			return err
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.items.AddStock(ctx, id, quantity); err != nil {
			return err
		}

		fmt.Printf("item %d restocked\n", id)
		return nil
	},
}

// itemListCmd lists the catalog
var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the whole catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		items, err := a.items.FindItems(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tLABEL\tPRICE\tSTOCK")
		for _, item := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n",
				item.ID, item.Kind, item.Label(), item.Price, item.StockQuantity)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemAddCmd, itemUpdateCmd, itemRestockCmd, itemListCmd)

	for _, c := range []*cobra.Command{itemAddCmd, itemUpdateCmd} {
		c.Flags().IntVar(&itemPrice, "price", 0, "Item price")
		c.Flags().IntVar(&itemStock, "stock", 0, "Stock quantity")
	}
	itemAddCmd.Flags().StringVar(&itemAuthor, "author", "", "Book author")
	itemAddCmd.Flags().StringVar(&itemISBN, "isbn", "", "Book ISBN")
	itemAddCmd.Flags().StringVar(&itemArtist, "artist", "", "Album artist")
}
