package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"orderkit/internal/database"
)

// migrateCmd applies the schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply the orderkit schema to the configured database.

Every statement is idempotent; running migrate against an existing database
is safe.

Examples:
  orderkit migrate
  orderkit migrate --db postgres://localhost:5432/orderkit`,
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

		fmt.Println("schema applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
