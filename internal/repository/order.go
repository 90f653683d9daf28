package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"orderkit/internal/domain"
	"orderkit/pkg/predicate"
	"orderkit/pkg/querier"
)

// FetchStrategy selects how Search materializes the order aggregate.
type FetchStrategy int

const (
	// FetchLazy resolves every association with its own lookup: one base
	// query plus two queries per order (delivery, lines). Correct and
	// paginable, worst round-trip count (1 + 2N).
	FetchLazy FetchStrategy = iota

	// FetchJoinBase joins orders to members and deliveries in one query
	// and loads order lines afterwards with batched IN lookups. Correct,
	// paginable, round trips bounded by 1 + ceil(N/batchSize).
	FetchJoinBase

	// FetchJoinItems joins the full aggregate including the one-to-many
	// order_items collection in a single query. The join multiplies
	// parent rows per line, so results are de-duplicated by order id in
	// memory and pagination is rejected: the executor would paginate
	// rows, not orders.
	FetchJoinItems
)

// String implements fmt.Stringer.
func (s FetchStrategy) String() string {
	switch s {
	case FetchLazy:
		return "lazy"
	case FetchJoinBase:
		return "join-base"
	case FetchJoinItems:
		return "join-items"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseFetchStrategy converts a strategy name into a FetchStrategy.
func ParseFetchStrategy(name string) (FetchStrategy, error) {
	switch name {
	case "lazy":
		return FetchLazy, nil
	case "join-base":
		return FetchJoinBase, nil
	case "join-items":
		return FetchJoinItems, nil
	default:
		return 0, &ConfigurationError{Reason: fmt.Sprintf("unknown fetch strategy %q", name)}
	}
}

// DefaultBatchSize bounds one batched IN lookup when no size is configured.
const DefaultBatchSize = 100

var (
	orderBaseColumns = []string{
		"o.order_id", "o.member_id", "o.delivery_id", "o.order_date", "o.status",
		"m.name", "m.city", "m.street", "m.zipcode",
	}
	deliveryJoinColumns = []string{
		"d.city", "d.street", "d.zipcode", "d.status",
	}
	lineJoinColumns = []string{
		"oi.order_item_id", "oi.order_id", "oi.item_id", "oi.order_price", "oi.count",
		"i.kind", "i.name", "i.price", "i.stock_quantity", "i.author", "i.isbn", "i.artist",
	}
)

// OrderRepository stores the order aggregate and materializes it through the
// configured fetch strategy.
type OrderRepository struct {
	db        *querier.DB
	batchSize int
}

// NewOrderRepository creates an order repository. batchSize bounds the
// batched association lookups; non-positive values fall back to
// DefaultBatchSize.
func NewOrderRepository(db *querier.DB, batchSize int) *OrderRepository {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &OrderRepository{db: db, batchSize: batchSize}
}

// Save persists the aggregate in creation order: the owned delivery first,
// then the order row referencing it, then every line. Runs inside the
// caller's transaction so the aggregate appears atomically.
func (r *OrderRepository) Save(ctx context.Context, tx *querier.Tx, o *domain.Order) error {
	d := o.Delivery
	err := tx.QueryRow(ctx,
		`INSERT INTO deliveries (city, street, zipcode, status) VALUES ($1, $2, $3, $4) RETURNING delivery_id`,
		d.Address.City, d.Address.Street, d.Address.Zipcode, string(d.Status),
	).Scan(&d.ID)
	if err != nil {
		return err
	}
	o.DeliveryID = d.ID

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (member_id, delivery_id, order_date, status) VALUES ($1, $2, $3, $4) RETURNING order_id`,
		o.MemberID, o.DeliveryID, o.OrderDate, string(o.Status),
	).Scan(&o.ID)
	if err != nil {
		return err
	}

	for _, line := range o.Items {
		line.OrderID = o.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, item_id, order_price, count) VALUES ($1, $2, $3, $4) RETURNING order_item_id`,
			line.OrderID, line.ItemID, line.OrderPrice, line.Count,
		).Scan(&line.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID loads the full aggregate for one order: the order with its member
// and delivery in one query, the lines with their items in a second.
func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order *domain.Order
	err := r.db.WithinReadOnlyTx(ctx, func(tx *querier.Tx) error {
		cols := append(append([]string{}, orderBaseColumns...), deliveryJoinColumns...)
		sql, args, err := predicate.Select(cols...).
			From("orders o").
			InnerJoin("members m", "o.member_id = m.member_id").
			InnerJoin("deliveries d", "o.delivery_id = d.delivery_id").
			Where(predicate.Eq("o.order_id", id)).
			ToSQL()
		if err != nil {
			return err
		}

		row := tx.QueryRow(ctx, sql, args...)
		order, err = scanOrderWithDelivery(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return querier.ErrNotFound
		}
		if err != nil {
			return err
		}

		order.Items, err = r.loadLines(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Search returns the orders matching the filter, materialized by the given
// strategy. A pagination request combined with the collection-join strategy
// fails fast with ConfigurationError before any query executes.
func (r *OrderRepository) Search(ctx context.Context, search OrderSearch, strategy FetchStrategy, page *Page) ([]*domain.Order, error) {
	if page != nil {
		if strategy == FetchJoinItems {
			return nil, &ConfigurationError{
				Reason: "pagination is not supported with the collection-join strategy: the executor paginates rows, not orders",
			}
		}
		if err := page.Validate(); err != nil {
			return nil, err
		}
	}

	var orders []*domain.Order
	err := r.db.WithinReadOnlyTx(ctx, func(tx *querier.Tx) error {
		var err error
		switch strategy {
		case FetchLazy:
			orders, err = r.searchLazy(ctx, tx, search, page)
		case FetchJoinBase:
			orders, err = r.searchJoinBase(ctx, tx, search, page)
		case FetchJoinItems:
			orders, err = r.searchJoinItems(ctx, tx, search)
		default:
			err = &ConfigurationError{Reason: fmt.Sprintf("unknown fetch strategy %d", int(strategy))}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// searchLazy issues the base query and then resolves delivery and lines with
// one lookup each per order: 1 + 2N round trips.
func (r *OrderRepository) searchLazy(ctx context.Context, tx *querier.Tx, search OrderSearch, page *Page) ([]*domain.Order, error) {
	orders, err := r.fetchBase(ctx, tx, search, page, false)
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		o.Delivery, err = r.loadDelivery(ctx, tx, o.DeliveryID)
		if err != nil {
			return nil, err
		}
		o.Items, err = r.loadLines(ctx, tx, o.ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// searchJoinBase joins members and deliveries eagerly, then batch-loads the
// lines with IN lookups chunked by the configured batch size.
func (r *OrderRepository) searchJoinBase(ctx context.Context, tx *querier.Tx, search OrderSearch, page *Page) ([]*domain.Order, error) {
	orders, err := r.fetchBase(ctx, tx, search, page, true)
	if err != nil {
		return nil, err
	}
	if err := r.batchLoadLines(ctx, tx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// searchJoinItems pulls the whole aggregate in one denormalized query and
// de-duplicates parent rows by order id, keeping first-seen parent values.
func (r *OrderRepository) searchJoinItems(ctx context.Context, tx *querier.Tx, search OrderSearch) ([]*domain.Order, error) {
	cols := append(append([]string{}, orderBaseColumns...), deliveryJoinColumns...)
	cols = append(cols, lineJoinColumns...)

	sql, args, err := predicate.Select(cols...).
		From("orders o").
		InnerJoin("members m", "o.member_id = m.member_id").
		InnerJoin("deliveries d", "o.delivery_id = d.delivery_id").
		InnerJoin("order_items oi", "oi.order_id = o.order_id").
		InnerJoin("items i", "oi.item_id = i.item_id").
		Where(search.Conditions()...).
		OrderBy("o.order_id", predicate.Asc).
		OrderBy("oi.order_item_id", predicate.Asc).
		ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[int64]*domain.Order)
	var orders []*domain.Order

	for rows.Next() {
		o := &domain.Order{Member: &domain.Member{}, Delivery: &domain.Delivery{}}
		line := &domain.OrderItem{Item: &domain.Item{}}
		var orderStatus, deliveryStatus, itemKind string
		var author, isbn, artist *string

		err := rows.Scan(
			&o.ID, &o.MemberID, &o.DeliveryID, &o.OrderDate, &orderStatus,
			&o.Member.Name, &o.Member.Address.City, &o.Member.Address.Street, &o.Member.Address.Zipcode,
			&o.Delivery.Address.City, &o.Delivery.Address.Street, &o.Delivery.Address.Zipcode, &deliveryStatus,
			&line.ID, &line.OrderID, &line.ItemID, &line.OrderPrice, &line.Count,
			&itemKind, &line.Item.Name, &line.Item.Price, &line.Item.StockQuantity, &author, &isbn, &artist,
		)
		if err != nil {
			return nil, err
		}

		parent, seen := index[o.ID]
		if !seen {
			o.Member.ID = o.MemberID
			o.Delivery.ID = o.DeliveryID
			o.Status = domain.OrderStatus(orderStatus)
			o.Delivery.Status = domain.DeliveryStatus(deliveryStatus)
			o.Items = []*domain.OrderItem{}
			index[o.ID] = o
			orders = append(orders, o)
			parent = o
		}

		line.Item.ID = line.ItemID
		if err := applyItemKind(line.Item, itemKind, author, isbn, artist); err != nil {
			return nil, err
		}
		parent.Items = append(parent.Items, line)
	}
	return orders, rows.Err()
}

// baseQuerySQL builds the single base query: orders joined to members
// (always, the filter needs the member name) and optionally to deliveries.
// A nil page caps the result at MaxSearchResults.
func baseQuerySQL(search OrderSearch, page *Page, withDelivery bool) (string, []any, error) {
	cols := append([]string{}, orderBaseColumns...)
	if withDelivery {
		cols = append(cols, deliveryJoinColumns...)
	}

	b := predicate.Select(cols...).
		From("orders o").
		InnerJoin("members m", "o.member_id = m.member_id")
	if withDelivery {
		b = b.InnerJoin("deliveries d", "o.delivery_id = d.delivery_id")
	}
	b = b.Where(search.Conditions()...).
		OrderBy("o.order_id", predicate.Asc)

	if page != nil {
		b = b.Limit(page.Limit).Offset(page.Offset)
	} else {
		b = b.Limit(MaxSearchResults)
	}

	return b.ToSQL()
}

func (r *OrderRepository) fetchBase(ctx context.Context, tx *querier.Tx, search OrderSearch, page *Page, withDelivery bool) ([]*domain.Order, error) {
	sql, args, err := baseQuerySQL(search, page, withDelivery)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var o *domain.Order
		if withDelivery {
			o, err = scanOrderWithDelivery(rows)
		} else {
			o, err = scanOrder(rows)
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) loadDelivery(ctx context.Context, tx *querier.Tx, deliveryID int64) (*domain.Delivery, error) {
	var d domain.Delivery
	var status string
	err := tx.QueryRow(ctx,
		`SELECT delivery_id, city, street, zipcode, status FROM deliveries WHERE delivery_id = $1`,
		deliveryID,
	).Scan(&d.ID, &d.Address.City, &d.Address.Street, &d.Address.Zipcode, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, querier.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.Status = domain.DeliveryStatus(status)
	return &d, nil
}

// loadLines fetches one order's lines with their items in a single joined
// lookup.
func (r *OrderRepository) loadLines(ctx context.Context, tx *querier.Tx, orderID int64) ([]*domain.OrderItem, error) {
	rows, err := tx.Query(ctx, lineSelectSQL+" WHERE oi.order_id = $1 ORDER BY oi.order_item_id", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []*domain.OrderItem{}
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// batchLoadLines resolves the lines association for a whole result set with
// one lookup per id chunk instead of one per order, bounding round trips to
// a small constant per association level.
func (r *OrderRepository) batchLoadLines(ctx context.Context, tx *querier.Tx, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	index := make(map[int64]*domain.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		o.Items = []*domain.OrderItem{}
		index[o.ID] = o
		ids = append(ids, o.ID)
	}

	for start := 0; start < len(ids); start += r.batchSize {
		end := min(start+r.batchSize, len(ids))
		chunk := ids[start:end]

		rows, err := tx.Query(ctx,
			lineSelectSQL+" WHERE oi.order_id = ANY($1) ORDER BY oi.order_item_id", chunk)
		if err != nil {
			return err
		}

		for rows.Next() {
			line, err := scanLine(rows)
			if err != nil {
				rows.Close()
				return err
			}
			parent, ok := index[line.OrderID]
			if !ok {
				continue
			}
			parent.Items = append(parent.Items, line)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// MarkCancelled flips the order status to CANCELLED with a guarded update.
// It reports false when the order was not in ORDERED state, which makes a
// duplicate cancel observable without any cross-request lock.
func (r *OrderRepository) MarkCancelled(ctx context.Context, tx *querier.Tx, orderID int64) (bool, error) {
	affected, err := tx.Exec(ctx,
		`UPDATE orders SET status = $1 WHERE order_id = $2 AND status = $3`,
		string(domain.StatusCancelled), orderID, string(domain.StatusOrdered))
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

const lineSelectSQL = `SELECT oi.order_item_id, oi.order_id, oi.item_id, oi.order_price, oi.count,
	i.kind, i.name, i.price, i.stock_quantity, i.author, i.isbn, i.artist
	FROM order_items oi INNER JOIN items i ON oi.item_id = i.item_id`

func scanLine(row pgx.Row) (*domain.OrderItem, error) {
	line := &domain.OrderItem{Item: &domain.Item{}}
	var kind string
	var author, isbn, artist *string

	err := row.Scan(&line.ID, &line.OrderID, &line.ItemID, &line.OrderPrice, &line.Count,
		&kind, &line.Item.Name, &line.Item.Price, &line.Item.StockQuantity, &author, &isbn, &artist)
	if err != nil {
		return nil, err
	}

	line.Item.ID = line.ItemID
	if err := applyItemKind(line.Item, kind, author, isbn, artist); err != nil {
		return nil, err
	}
	return line, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{Member: &domain.Member{}}
	var status string

	err := row.Scan(&o.ID, &o.MemberID, &o.DeliveryID, &o.OrderDate, &status,
		&o.Member.Name, &o.Member.Address.City, &o.Member.Address.Street, &o.Member.Address.Zipcode)
	if err != nil {
		return nil, err
	}

	o.Member.ID = o.MemberID
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func scanOrderWithDelivery(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{Member: &domain.Member{}, Delivery: &domain.Delivery{}}
	var orderStatus, deliveryStatus string

	err := row.Scan(&o.ID, &o.MemberID, &o.DeliveryID, &o.OrderDate, &orderStatus,
		&o.Member.Name, &o.Member.Address.City, &o.Member.Address.Street, &o.Member.Address.Zipcode,
		&o.Delivery.Address.City, &o.Delivery.Address.Street, &o.Delivery.Address.Zipcode, &deliveryStatus)
	if err != nil {
		return nil, err
	}

	o.Member.ID = o.MemberID
	o.Delivery.ID = o.DeliveryID
	o.Status = domain.OrderStatus(orderStatus)
	o.Delivery.Status = domain.DeliveryStatus(deliveryStatus)
	return o, nil
}
