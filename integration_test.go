//go:build integration
// +build integration

package orderkit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"orderkit/internal/database"
	"orderkit/internal/domain"
	"orderkit/internal/repository"
	"orderkit/internal/repository/orderquery"
	"orderkit/internal/service"
	"orderkit/pkg/querier"
)

// setupTestDB creates a PostgreSQL container, applies the schema and returns
// a connected DB.
func setupTestDB(t *testing.T) *querier.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := querier.ConnectURL(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.Migrate(ctx, db))
	return db
}

type fixture struct {
	db      *querier.DB
	members *repository.MemberRepository
	items   *repository.ItemRepository
	orders  *repository.OrderRepository
	queries *orderquery.Repository

	memberSvc *service.MemberService
	itemSvc   *service.ItemService
	orderSvc  *service.OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	members := repository.NewMemberRepository(db)
	items := repository.NewItemRepository(db)
	orders := repository.NewOrderRepository(db, 0)

	return &fixture{
		db:        db,
		members:   members,
		items:     items,
		orders:    orders,
		queries:   orderquery.New(db, 0),
		memberSvc: service.NewMemberService(db, members),
		itemSvc:   service.NewItemService(db, items),
		orderSvc:  service.NewOrderService(db, orders, members, items),
	}
}

func (f *fixture) addMember(t *testing.T, name, city string) *domain.Member {
	t.Helper()
	m := &domain.Member{Name: name, Address: domain.Address{City: city, Street: "Main St", Zipcode: "12345"}}
	_, err := f.memberSvc.Join(context.Background(), m)
	require.NoError(t, err)
	return m
}

func (f *fixture) addBook(t *testing.T, name string, price, stock int) *domain.Item {
	t.Helper()
	item := domain.NewBook(name, price, stock, "Author", "isbn-"+name)
	_, err := f.itemSvc.SaveItem(context.Background(), item)
	require.NoError(t, err)
	return item
}

// placeMultiLineOrder persists an order with one line per entry, reserving
// stock for each line in the same transaction.
func (f *fixture) placeMultiLineOrder(t *testing.T, member *domain.Member, items []*domain.Item, counts []int) *domain.Order {
	t.Helper()
	ctx := context.Background()

	var lines []*domain.OrderItem
	for i, item := range items {
		line, err := domain.NewOrderItem(item, item.Price, counts[i])
		require.NoError(t, err)
		lines = append(lines, line)
	}

	order := domain.CreateOrder(member, domain.NewDelivery(member.Address), lines...)
	err := f.db.WithinTx(ctx, func(tx *querier.Tx) error {
		for _, line := range order.Items {
			if err := f.items.AdjustStock(ctx, tx, line.ItemID, -line.Count); err != nil {
				return err
			}
		}
		return f.orders.Save(ctx, tx, order)
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) stockOf(t *testing.T, itemID int64) int {
	t.Helper()
	item, err := f.items.FindByID(context.Background(), itemID)
	require.NoError(t, err)
	return item.StockQuantity
}

func TestFetchStrategiesReturnEquivalentOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park := f.addMember(t, "park", "Seoul")
	kim := f.addMember(t, "kim", "Busan")
	bookA := f.addBook(t, "Clean Code", 10000, 100)
	bookB := f.addBook(t, "Refactoring", 20000, 100)

	f.placeMultiLineOrder(t, park, []*domain.Item{bookA, bookB}, []int{1, 2})
	f.placeMultiLineOrder(t, kim, []*domain.Item{bookA}, []int{3})

	strategies := []repository.FetchStrategy{
		repository.FetchLazy, repository.FetchJoinBase, repository.FetchJoinItems,
	}

	type snapshot struct {
		memberName string
		status     domain.OrderStatus
		total      int
		lineItems  []string
	}

	var baseline []snapshot
	for i, strategy := range strategies {
		orders, err := f.orders.Search(ctx, repository.OrderSearch{}, strategy, nil)
		require.NoError(t, err, "strategy %s", strategy)
		require.Len(t, orders, 2, "strategy %s", strategy)

		var got []snapshot
		for _, o := range orders {
			s := snapshot{memberName: o.Member.Name, status: o.Status, total: o.TotalPrice()}
			for _, line := range o.Items {
				s.lineItems = append(s.lineItems, line.Item.Name)
			}
			got = append(got, s)
		}

		if i == 0 {
			baseline = got
			continue
		}
		assert.Equal(t, baseline, got, "strategy %s disagrees with %s", strategy, strategies[0])
	}
}

func TestFetchStrategyRoundTripCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park := f.addMember(t, "park", "Seoul")
	book := f.addBook(t, "Clean Code", 10000, 100)
	const orderCount = 4
	for range orderCount {
		f.placeMultiLineOrder(t, park, []*domain.Item{book}, []int{1})
	}

	tests := []struct {
		strategy repository.FetchStrategy
		want     int64
	}{
		// one base query plus delivery and lines per order
		{strategy: repository.FetchLazy, want: 1 + 2*orderCount},
		// one joined base query plus one batched line lookup
		{strategy: repository.FetchJoinBase, want: 2},
		// a single denormalized query
		{strategy: repository.FetchJoinItems, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			f.db.ResetQueryCount()
			orders, err := f.orders.Search(ctx, repository.OrderSearch{}, tt.strategy, nil)
			require.NoError(t, err)
			require.Len(t, orders, orderCount)
			assert.Equal(t, tt.want, f.db.QueryCount())
		})
	}
}

func TestSearchFiltersAndPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park := f.addMember(t, "park", "Seoul")
	kim := f.addMember(t, "kim", "Busan")
	book := f.addBook(t, "Clean Code", 10000, 100)

	parkOrder := f.placeMultiLineOrder(t, park, []*domain.Item{book}, []int{1})
	f.placeMultiLineOrder(t, kim, []*domain.Item{book}, []int{1})
	require.NoError(t, f.orderSvc.CancelOrder(ctx, parkOrder.ID))

	ordered := domain.StatusOrdered
	orders, err := f.orders.Search(ctx, repository.OrderSearch{Status: &ordered}, repository.FetchJoinBase, nil)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "kim", orders[0].Member.Name)

	orders, err = f.orders.Search(ctx, repository.OrderSearch{MemberName: "ar"}, repository.FetchLazy, nil)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "park", orders[0].Member.Name)

	page, err := repository.NewPage(1, 1)
	require.NoError(t, err)
	orders, err = f.orders.Search(ctx, repository.OrderSearch{}, repository.FetchJoinBase, page)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	_, err = f.orders.Search(ctx, repository.OrderSearch{}, repository.FetchJoinItems, page)
	var confErr *repository.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestCollectionJoinDeduplicatesParents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park := f.addMember(t, "park", "Seoul")
	bookA := f.addBook(t, "Clean Code", 10000, 100)
	bookB := f.addBook(t, "Refactoring", 20000, 100)
	f.placeMultiLineOrder(t, park, []*domain.Item{bookA, bookB}, []int{1, 1})

	orders, err := f.orders.Search(ctx, repository.OrderSearch{}, repository.FetchJoinItems, nil)
	require.NoError(t, err)

	// two joined rows, one logical order
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 2)
}

func TestCancelRestoresStockExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park := f.addMember(t, "park", "Seoul")
	book := f.addBook(t, "Clean Code", 10000, 5)

	orderID, err := f.orderSvc.PlaceOrder(ctx, park.ID, book.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, f.stockOf(t, book.ID))

	require.NoError(t, f.orderSvc.CancelOrder(ctx, orderID))
	assert.Equal(t, 5, f.stockOf(t, book.ID))

	order, err := f.orderSvc.FindOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)

	// a second cancel must fail and must not restore stock again
	err = f.orderSvc.CancelOrder(ctx, orderID)
	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, 5, f.stockOf(t, book.ID))
}

func TestPlaceOrderOverdrawRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park := f.addMember(t, "park", "Seoul")
	book := f.addBook(t, "Clean Code", 10000, 3)

	_, err := f.orderSvc.PlaceOrder(ctx, park.ID, book.ID, 4)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	assert.Equal(t, 3, f.stockOf(t, book.ID))
	orders, err := f.orders.Search(ctx, repository.OrderSearch{}, repository.FetchLazy, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrderUnknownIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park := f.addMember(t, "park", "Seoul")
	book := f.addBook(t, "Clean Code", 10000, 3)

	_, err := f.orderSvc.PlaceOrder(ctx, 9999, book.ID, 1)
	assert.True(t, errors.Is(err, querier.ErrNotFound))

	_, err = f.orderSvc.PlaceOrder(ctx, park.ID, 9999, 1)
	assert.True(t, errors.Is(err, querier.ErrNotFound))
}

func TestDuplicateMemberNameRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addMember(t, "park", "Seoul")

	_, err := f.memberSvc.Join(ctx, &domain.Member{Name: "park"})
	var dupErr *domain.DuplicateError
	require.ErrorAs(t, err, &dupErr)
}

func TestItemUpdateIsExplicit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	book := f.addBook(t, "Clean Code", 10000, 5)

	// mutating the loaded copy persists nothing
	loaded, err := f.itemSvc.FindOne(ctx, book.ID)
	require.NoError(t, err)
	loaded.Price = 99999

	reloaded, err := f.itemSvc.FindOne(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 10000, reloaded.Price)

	require.NoError(t, f.itemSvc.UpdateItem(ctx, book.ID, "Clean Code, 2nd ed.", 12000, 8))
	reloaded, err = f.itemSvc.FindOne(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clean Code, 2nd ed.", reloaded.Name)
	assert.Equal(t, 12000, reloaded.Price)
	assert.Equal(t, 8, reloaded.StockQuantity)

	err = f.itemSvc.UpdateItem(ctx, 9999, "x", 1, 1)
	assert.True(t, errors.Is(err, querier.ErrNotFound))
}

func TestReadModelsAgree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park := f.addMember(t, "park", "Seoul")
	bookA := f.addBook(t, "Clean Code", 10000, 100)
	bookB := f.addBook(t, "Refactoring", 20000, 100)
	f.placeMultiLineOrder(t, park, []*domain.Item{bookA, bookB}, []int{1, 2})
	f.placeMultiLineOrder(t, park, []*domain.Item{bookB}, []int{1})

	naive, err := f.queries.FindViews(ctx, repository.OrderSearch{})
	require.NoError(t, err)

	batched, err := f.queries.FindViewsBatched(ctx, repository.OrderSearch{})
	require.NoError(t, err)

	flat, err := f.queries.FindFlatRows(ctx, repository.OrderSearch{})
	require.NoError(t, err)
	reconciled := orderquery.Reconcile(flat)

	assert.Equal(t, naive, batched)
	assert.Equal(t, batched, reconciled)

	require.Len(t, batched, 2)
	assert.Len(t, batched[0].Items, 2)
	assert.Len(t, batched[1].Items, 1)
}

func TestReadModelRoundTripCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park := f.addMember(t, "park", "Seoul")
	book := f.addBook(t, "Clean Code", 10000, 100)
	const orderCount = 3
	for range orderCount {
		f.placeMultiLineOrder(t, park, []*domain.Item{book}, []int{1})
	}

	f.db.ResetQueryCount()
	_, err := f.queries.FindViews(ctx, repository.OrderSearch{})
	require.NoError(t, err)
	assert.Equal(t, int64(1+orderCount), f.db.QueryCount())

	f.db.ResetQueryCount()
	_, err = f.queries.FindViewsBatched(ctx, repository.OrderSearch{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.db.QueryCount())

	f.db.ResetQueryCount()
	_, err = f.queries.FindFlatRows(ctx, repository.OrderSearch{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.db.QueryCount())
}

func TestMemberOrdersNavigation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	park := f.addMember(t, "park", "Seoul")
	book := f.addBook(t, "Clean Code", 10000, 100)

	first, err := f.orderSvc.PlaceOrder(ctx, park.ID, book.ID, 1)
	require.NoError(t, err)
	second, err := f.orderSvc.PlaceOrder(ctx, park.ID, book.ID, 1)
	require.NoError(t, err)

	ids, err := f.memberSvc.FindOrders(ctx, park.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{first, second}, ids)
}

func TestCategoryTree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cats := repository.NewCategoryRepository(f.db)
	book := f.addBook(t, "Clean Code", 10000, 100)

	root := &domain.Category{Name: "books"}
	var tech *domain.Category
	err := f.db.WithinTx(ctx, func(tx *querier.Tx) error {
		if err := cats.Save(ctx, tx, root); err != nil {
			return err
		}
		tech = &domain.Category{Name: "tech", ParentID: &root.ID}
		if err := cats.Save(ctx, tx, tech); err != nil {
			return err
		}
		return cats.AttachItem(ctx, tx, tech.ID, book.ID)
	})
	require.NoError(t, err)

	children, err := cats.FindChildren(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "tech", children[0].Name)

	items, err := cats.FindItems(ctx, tech.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Clean Code", items[0].Name)

	// attaching twice is idempotent
	err = f.db.WithinTx(ctx, func(tx *querier.Tx) error {
		return cats.AttachItem(ctx, tx, tech.ID, book.ID)
	})
	require.NoError(t, err)
	items, err = cats.FindItems(ctx, tech.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
