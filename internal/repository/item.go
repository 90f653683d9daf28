package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"orderkit/internal/domain"
	"orderkit/pkg/querier"
)

const itemColumns = "item_id, kind, name, price, stock_quantity, author, isbn, artist"

// ItemRepository stores items. Variants share the items table, discriminated
// by the kind column (single-table layout).
type ItemRepository struct {
	db *querier.DB
}

// NewItemRepository creates an item repository.
func NewItemRepository(db *querier.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Save inserts the item and fills its generated id.
func (r *ItemRepository) Save(ctx context.Context, tx *querier.Tx, item *domain.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	var author, isbn, artist *string
	switch item.Kind {
	case domain.KindBook:
		author, isbn = &item.Book.Author, &item.Book.ISBN
	case domain.KindAlbum:
		artist = &item.Album.Artist
	}

	return tx.QueryRow(ctx,
		`INSERT INTO items (kind, name, price, stock_quantity, author, isbn, artist)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING item_id`,
		string(item.Kind), item.Name, item.Price, item.StockQuantity, author, isbn, artist,
	).Scan(&item.ID)
}

// Update persists new name, price and stock for an existing item. This is
// the explicit, intention-revealing replacement for engine-side dirty
// checking: callers read, mutate, then save within one transaction.
func (r *ItemRepository) Update(ctx context.Context, tx *querier.Tx, id int64, name string, price, stockQuantity int) error {
	affected, err := tx.Exec(ctx,
		`UPDATE items SET name = $1, price = $2, stock_quantity = $3 WHERE item_id = $4`,
		name, price, stockQuantity, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return querier.ErrNotFound
	}
	return nil
}

// AdjustStock moves the stock quantity by delta inside the given
// transaction. The update is guarded so the quantity can never go negative;
// a rejected decrement surfaces as InsufficientStockError.
func (r *ItemRepository) AdjustStock(ctx context.Context, tx *querier.Tx, itemID int64, delta int) error {
	affected, err := tx.Exec(ctx,
		`UPDATE items SET stock_quantity = stock_quantity + $1
		 WHERE item_id = $2 AND stock_quantity + $1 >= 0`,
		delta, itemID)
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var available int
	err = tx.QueryRow(ctx, "SELECT stock_quantity FROM items WHERE item_id = $1", itemID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return querier.ErrNotFound
	}
	if err != nil {
		return err
	}
	return &domain.InsufficientStockError{ItemID: itemID, Requested: -delta, Available: available}
}

// FindByID looks an item up by primary key.
func (r *ItemRepository) FindByID(ctx context.Context, id int64) (*domain.Item, error) {
	row := r.db.QueryRow(ctx, "SELECT "+itemColumns+" FROM items WHERE item_id = $1", id)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, querier.ErrNotFound
	}
	return item, err
}

// FindAll returns every item, ordered by id.
func (r *ItemRepository) FindAll(ctx context.Context) ([]*domain.Item, error) {
	rows, err := r.db.Query(ctx, "SELECT "+itemColumns+" FROM items ORDER BY item_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// scanItem hydrates the tagged union from one row of itemColumns,
// dispatching exhaustively on the kind discriminator.
func scanItem(row pgx.Row) (*domain.Item, error) {
	var item domain.Item
	var kind string
	var author, isbn, artist *string

	err := row.Scan(&item.ID, &kind, &item.Name, &item.Price, &item.StockQuantity,
		&author, &isbn, &artist)
	if err != nil {
		return nil, err
	}

	if err := applyItemKind(&item, kind, author, isbn, artist); err != nil {
		return nil, err
	}
	return &item, nil
}

// applyItemKind sets the discriminator and the matching variant payload,
// rejecting kinds the domain does not know.
func applyItemKind(item *domain.Item, kind string, author, isbn, artist *string) error {
	item.Kind = domain.ItemKind(kind)
	switch item.Kind {
	case domain.KindBook:
		item.Book = &domain.BookDetails{}
		if author != nil {
			item.Book.Author = *author
		}
		if isbn != nil {
			item.Book.ISBN = *isbn
		}
	case domain.KindAlbum:
		item.Album = &domain.AlbumDetails{}
		if artist != nil {
			item.Album.Artist = *artist
		}
	default:
		return fmt.Errorf("item %d: unknown kind %q in storage", item.ID, kind)
	}
	return nil
}
