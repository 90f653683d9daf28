package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"orderkit/internal/domain"
)

var (
	// Member flags
	memberCity    string
	memberStreet  string
	memberZipcode string
)

// memberCmd groups the member operations
var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Register and list members",
}

// memberJoinCmd registers a member
var memberJoinCmd = &cobra.Command{
	Use:   "join NAME",
	Short: "Register a new member",
	Long: `Register a new member. Names are unique; registering an existing
name fails.

Examples:
  orderkit member join park --city Seoul --street Teheran-ro --zipcode 06134`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		member := &domain.Member{
			Name:    args[0],
			Address: domain.Address{City: memberCity, Street: memberStreet, Zipcode: memberZipcode},
		}
		id, err := a.members.Join(ctx, member)
		if err != nil {
			return err
		}

		fmt.Printf("member %d registered\n", id)
		return nil
	},
}

// memberListCmd lists members
var memberListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every member",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		members, err := a.members.FindMembers(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCITY\tSTREET\tZIPCODE")
		for _, m := range members {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				m.ID, m.Name, m.Address.City, m.Address.Street, m.Address.Zipcode)
		}
		return w.Flush()
	},
}

// memberOrdersCmd lists a member's order ids
var memberOrdersCmd = &cobra.Command{
	Use:   "orders MEMBER_ID",
	Short: "List the ids of a member's orders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		memberID, err := parseID(args[0], "member id")
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		ids, err := a.members.FindOrders(ctx, memberID)
		if err != nil {
			return err
		}

		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(memberCmd)
	memberCmd.AddCommand(memberJoinCmd, memberListCmd, memberOrdersCmd)

	memberJoinCmd.Flags().StringVar(&memberCity, "city", "", "Member city")
	memberJoinCmd.Flags().StringVar(&memberStreet, "street", "", "Member street")
	memberJoinCmd.Flags().StringVar(&memberZipcode, "zipcode", "", "Member zipcode")
}
