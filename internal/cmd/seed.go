package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"orderkit/internal/database"
	"orderkit/internal/domain"
)

// seedCmd loads a small demo data set
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo members, items and orders",
	Long: `Apply the schema if needed and load a small demo data set: two
members, a few catalog items and an order each.

Examples:
  orderkit seed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := database.Migrate(ctx, a.db); err != nil {
			return err
		}
		return runSeed(ctx, a)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context, a *app) error {
	type seedMember struct {
		name    string
		address domain.Address
		items   []*domain.Item
		counts  []int
	}

	seeds := []seedMember{
		{
			name:    "park",
			address: domain.Address{City: "Seoul", Street: "Teheran-ro", Zipcode: "06134"},
			items: []*domain.Item{
				domain.NewBook("Clean Code", 10000, 100, "Robert C. Martin", "978-0132350884"),
				domain.NewBook("The Go Programming Language", 20000, 100, "Alan Donovan", "978-0134190440"),
			},
			counts: []int{1, 2},
		},
		{
			name:    "kim",
			address: domain.Address{City: "Busan", Street: "Haeundae-ro", Zipcode: "48094"},
			items: []*domain.Item{
				domain.NewAlbum("Abbey Road", 15000, 50, "The Beatles"),
				domain.NewAlbum("Kind of Blue", 18000, 50, "Miles Davis"),
			},
			counts: []int{3, 4},
		},
	}

	for _, seed := range seeds {
		member := &domain.Member{Name: seed.name, Address: seed.address}
		memberID, err := a.members.Join(ctx, member)
		if err != nil {
			return fmt.Errorf("failed to seed member %s: %w", seed.name, err)
		}

		for i, item := range seed.items {
			itemID, err := a.items.SaveItem(ctx, item)
			if err != nil {
				return fmt.Errorf("failed to seed item %s: %w", item.Name, err)
			}

			orderID, err := a.orders.PlaceOrder(ctx, memberID, itemID, seed.counts[i])
			if err != nil {
				return fmt.Errorf("failed to seed order for %s: %w", item.Name, err)
			}
			if verbose {
				fmt.Printf("order %d: %s x%d for %s\n", orderID, item.Name, seed.counts[i], seed.name)
			}
		}
	}

	fmt.Println("demo data loaded")
	return nil
}
