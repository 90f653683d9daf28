// Package cmd wires the orderkit CLI: schema management, seeding and the
// ordering operations.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"orderkit/internal/config"
	"orderkit/internal/database"
	"orderkit/internal/repository"
	"orderkit/internal/repository/orderquery"
	"orderkit/internal/service"
	"orderkit/pkg/querier"
)

var (
	// Global flags
	dbURL   string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "orderkit",
	Short: "Orderkit - order management over PostgreSQL",
	Long: `Orderkit manages members, a book and album catalog, and their orders
on PostgreSQL.

Features:
  - Place and cancel orders with guarded stock accounting
  - Search orders with selectable association fetch strategies
  - Read-model projections with flat-row reconciliation
  - Idempotent schema migration and demo seeding`,
	Version: "0.3.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// app bundles one command invocation's connected services.
type app struct {
	cfg      *config.Config
	db       *querier.DB
	members  *service.MemberService
	items    *service.ItemService
	orders   *service.OrderService
	queries  *orderquery.Repository
	strategy repository.FetchStrategy
}

// newApp loads configuration, connects and wires the services. Callers must
// close the returned app.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	var db *querier.DB
	if dbURL != "" {
		db, err = querier.ConnectURL(ctx, dbURL)
	} else {
		db, err = database.Connect(ctx, cfg.DB)
	}
	if err != nil {
		return nil, err
	}

	strategy, err := repository.ParseFetchStrategy(cfg.Fetch.Strategy)
	if err != nil {
		db.Close()
		return nil, err
	}

	db.WithMetrics(querier.NewMetrics(prometheus.NewRegistry()))

	memberRepo := repository.NewMemberRepository(db)
	itemRepo := repository.NewItemRepository(db)
	orderRepo := repository.NewOrderRepository(db, cfg.Fetch.BatchSize)

	return &app{
		cfg:      cfg,
		db:       db,
		members:  service.NewMemberService(db, memberRepo),
		items:    service.NewItemService(db, itemRepo),
		orders:   service.NewOrderService(db, orderRepo, memberRepo, itemRepo),
		queries:  orderquery.New(db, cfg.Fetch.BatchSize),
		strategy: strategy,
	}, nil
}

func (a *app) close() {
	a.db.Close()
}
