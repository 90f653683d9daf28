package orderquery

import (
	"context"

	"orderkit/internal/domain"
	"orderkit/internal/repository"
	"orderkit/pkg/predicate"
	"orderkit/pkg/querier"
)

var summaryColumns = []string{
	"o.order_id", "m.name", "o.order_date", "o.status",
	"d.city", "d.street", "d.zipcode",
}

// Repository fetches read models directly from storage, selecting only the
// projected columns instead of hydrating aggregates.
type Repository struct {
	db        *querier.DB
	batchSize int
}

// New creates a read-model repository. batchSize bounds batched line
// lookups; non-positive values fall back to the shared default.
func New(db *querier.DB, batchSize int) *Repository {
	if batchSize <= 0 {
		batchSize = repository.DefaultBatchSize
	}
	return &Repository{db: db, batchSize: batchSize}
}

// FindSummaries returns the collection-free projection: one query joining
// orders, members and deliveries. Safe to paginate.
func (r *Repository) FindSummaries(ctx context.Context, search repository.OrderSearch, page *repository.Page) ([]OrderSummary, error) {
	if page != nil {
		if err := page.Validate(); err != nil {
			return nil, err
		}
	}

	var summaries []OrderSummary
	err := r.db.WithinReadOnlyTx(ctx, func(tx *querier.Tx) error {
		var err error
		summaries, err = r.fetchSummaries(ctx, tx, search, page)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// FindViews loads summaries and then resolves each order's lines with its
// own lookup. Kept as the naive read-model baseline: 1 + N round trips.
func (r *Repository) FindViews(ctx context.Context, search repository.OrderSearch) ([]OrderView, error) {
	var views []OrderView
	err := r.db.WithinReadOnlyTx(ctx, func(tx *querier.Tx) error {
		summaries, err := r.fetchSummaries(ctx, tx, search, nil)
		if err != nil {
			return err
		}

		views = make([]OrderView, 0, len(summaries))
		for _, s := range summaries {
			lines, err := r.fetchLines(ctx, tx, s.OrderID)
			if err != nil {
				return err
			}
			views = append(views, OrderView{OrderSummary: s, Items: lines})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// FindViewsBatched loads summaries and then resolves all lines with batched
// IN lookups grouped by order id: a small constant number of queries
// regardless of result size.
func (r *Repository) FindViewsBatched(ctx context.Context, search repository.OrderSearch) ([]OrderView, error) {
	var views []OrderView
	err := r.db.WithinReadOnlyTx(ctx, func(tx *querier.Tx) error {
		summaries, err := r.fetchSummaries(ctx, tx, search, nil)
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(summaries))
		for _, s := range summaries {
			ids = append(ids, s.OrderID)
		}

		lineMap, err := r.fetchLineMap(ctx, tx, ids)
		if err != nil {
			return err
		}

		views = make([]OrderView, 0, len(summaries))
		for _, s := range summaries {
			lines := lineMap[s.OrderID]
			if lines == nil {
				lines = []ItemLine{}
			}
			views = append(views, OrderView{OrderSummary: s, Items: lines})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// FindFlatRows selects the full denormalized cross product in one query.
// The result carries duplicate parent fields per line; callers regroup it
// with Reconcile. Not paginable for the same reason the entity-side
// collection join is not.
func (r *Repository) FindFlatRows(ctx context.Context, search repository.OrderSearch) ([]FlatRow, error) {
	cols := append(append([]string{}, summaryColumns...), "i.name", "oi.order_price", "oi.count")

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

	var flat []FlatRow
	err = r.db.WithinReadOnlyTx(ctx, func(tx *querier.Tx) error {
		rows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var row FlatRow
			var status string
			err := rows.Scan(&row.OrderID, &row.MemberName, &row.OrderDate, &status,
				&row.Address.City, &row.Address.Street, &row.Address.Zipcode,
				&row.ItemName, &row.OrderPrice, &row.Count)
			if err != nil {
				return err
			}
			row.Status = domain.OrderStatus(status)
			flat = append(flat, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return flat, nil
}

// summaryQuerySQL builds the summary projection query. A nil page caps the
// result at the shared unfiltered-search maximum.
func summaryQuerySQL(search repository.OrderSearch, page *repository.Page) (string, []any, error) {
	b := predicate.Select(summaryColumns...).
		From("orders o").
		InnerJoin("members m", "o.member_id = m.member_id").
		InnerJoin("deliveries d", "o.delivery_id = d.delivery_id").
		Where(search.Conditions()...).
		OrderBy("o.order_id", predicate.Asc)

	if page != nil {
		b = b.Limit(page.Limit).Offset(page.Offset)
	} else {
		b = b.Limit(repository.MaxSearchResults)
	}

	return b.ToSQL()
}

func (r *Repository) fetchSummaries(ctx context.Context, tx *querier.Tx, search repository.OrderSearch, page *repository.Page) ([]OrderSummary, error) {
	sql, args, err := summaryQuerySQL(search, page)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []OrderSummary
	for rows.Next() {
		var s OrderSummary
		var status string
		err := rows.Scan(&s.OrderID, &s.MemberName, &s.OrderDate, &status,
			&s.Address.City, &s.Address.Street, &s.Address.Zipcode)
		if err != nil {
			return nil, err
		}
		s.Status = domain.OrderStatus(status)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

const lineSQL = `SELECT oi.order_id, i.name, oi.order_price, oi.count
	FROM order_items oi INNER JOIN items i ON oi.item_id = i.item_id`

func (r *Repository) fetchLines(ctx context.Context, tx *querier.Tx, orderID int64) ([]ItemLine, error) {
	rows, err := tx.Query(ctx, lineSQL+" WHERE oi.order_id = $1 ORDER BY oi.order_item_id", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []ItemLine{}
	for rows.Next() {
		var l ItemLine
		if err := rows.Scan(&l.OrderID, &l.ItemName, &l.OrderPrice, &l.Count); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// fetchLineMap loads the lines for every given order id with chunked IN
// lookups and groups them by order id.
func (r *Repository) fetchLineMap(ctx context.Context, tx *querier.Tx, ids []int64) (map[int64][]ItemLine, error) {
	lineMap := make(map[int64][]ItemLine, len(ids))

	for start := 0; start < len(ids); start += r.batchSize {
		end := min(start+r.batchSize, len(ids))
		chunk := ids[start:end]

		rows, err := tx.Query(ctx,
			lineSQL+" WHERE oi.order_id = ANY($1) ORDER BY oi.order_item_id", chunk)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			var l ItemLine
			if err := rows.Scan(&l.OrderID, &l.ItemName, &l.OrderPrice, &l.Count); err != nil {
				rows.Close()
				return nil, err
			}
			lineMap[l.OrderID] = append(lineMap[l.OrderID], l)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return lineMap, nil
}
