package repository

import (
	"context"

	"orderkit/internal/domain"
	"orderkit/pkg/querier"
)

// CategoryRepository stores the category tree and the many-to-many link
// between categories and items (category_items junction table).
type CategoryRepository struct {
	db *querier.DB
}

// NewCategoryRepository creates a category repository.
func NewCategoryRepository(db *querier.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Save inserts the category and fills its generated id.
func (r *CategoryRepository) Save(ctx context.Context, tx *querier.Tx, c *domain.Category) error {
	return tx.QueryRow(ctx,
		`INSERT INTO categories (name, parent_id) VALUES ($1, $2) RETURNING category_id`,
		c.Name, c.ParentID,
	).Scan(&c.ID)
}

// AttachItem links an item into a category. Attaching twice is a no-op.
func (r *CategoryRepository) AttachItem(ctx context.Context, tx *querier.Tx, categoryID, itemID int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO category_items (category_id, item_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		categoryID, itemID)
	return err
}

// FindChildren returns the direct children of a category, reconstructing the
// non-owning parent→children index from the parent_id foreign key.
func (r *CategoryRepository) FindChildren(ctx context.Context, parentID int64) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT category_id, name, parent_id FROM categories WHERE parent_id = $1 ORDER BY category_id`,
		parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID); err != nil {
			return nil, err
		}
		children = append(children, &c)
	}
	return children, rows.Err()
}

// FindItems returns the items attached to a category through the junction
// table.
func (r *CategoryRepository) FindItems(ctx context.Context, categoryID int64) ([]*domain.Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT i.item_id, i.kind, i.name, i.price, i.stock_quantity, i.author, i.isbn, i.artist
		 FROM items i
		 INNER JOIN category_items ci ON i.item_id = ci.item_id
		 WHERE ci.category_id = $1
		 ORDER BY i.item_id`,
		categoryID)
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
