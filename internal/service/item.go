package service

import (
	"context"

	"orderkit/internal/domain"
	"orderkit/internal/repository"
	"orderkit/pkg/querier"
)

// ItemService manages the item catalog.
type ItemService struct {
	db    *querier.DB
	items *repository.ItemRepository
}

// NewItemService creates an item service.
func NewItemService(db *querier.DB, items *repository.ItemRepository) *ItemService {
	return &ItemService{db: db, items: items}
}

// SaveItem registers a new catalog item.
func (s *ItemService) SaveItem(ctx context.Context, item *domain.Item) (int64, error) {
	err := s.db.WithinTx(ctx, func(tx *querier.Tx) error {
		return s.items.Save(ctx, tx, item)
	})
	if err != nil {
		return 0, err
	}
	return item.ID, nil
}

// UpdateItem writes new name, price and stock for an existing item. The
// caller states the whole new state; nothing is inferred from what changed.
func (s *ItemService) UpdateItem(ctx context.Context, id int64, name string, price, stockQuantity int) error {
	return s.db.WithinTx(ctx, func(tx *querier.Tx) error {
		return s.items.Update(ctx, tx, id, name, price, stockQuantity)
	})
}

// AddStock raises an item's stock quantity.
func (s *ItemService) AddStock(ctx context.Context, itemID int64, quantity int) error {
	if quantity <= 0 {
		return &domain.InvalidStateError{Reason: "stock increment must be positive"}
	}
	return s.db.WithinTx(ctx, func(tx *querier.Tx) error {
		return s.items.AdjustStock(ctx, tx, itemID, quantity)
	})
}

// FindItems returns the whole catalog.
func (s *ItemService) FindItems(ctx context.Context) ([]*domain.Item, error) {
	return s.items.FindAll(ctx)
}

// FindOne looks an item up by id.
func (s *ItemService) FindOne(ctx context.Context, id int64) (*domain.Item, error) {
	return s.items.FindByID(ctx, id)
}
