package service

import (
	"context"

	"orderkit/internal/domain"
	"orderkit/internal/repository"
	"orderkit/pkg/querier"
)

// OrderService implements the ordering use cases: placing, cancelling and
// searching orders. Stock movements and status flips ride on guarded
// updates, so two racing requests resolve at the storage layer without a
// cross-request lock.
type OrderService struct {
	db      *querier.DB
	orders  *repository.OrderRepository
	members *repository.MemberRepository
	items   *repository.ItemRepository
}

// NewOrderService creates an order service.
func NewOrderService(db *querier.DB, orders *repository.OrderRepository, members *repository.MemberRepository, items *repository.ItemRepository) *OrderService {
	return &OrderService{db: db, orders: orders, members: members, items: items}
}

// PlaceOrder creates an order of count units of one item for the given
// member, delivered to the member's address. The item's current price is
// snapshotted into the line. Stock is reserved with a guarded decrement in
// the same transaction that persists the aggregate, so an overdraw rolls
// the whole order back.
func (s *OrderService) PlaceOrder(ctx context.Context, memberID, itemID int64, count int) (int64, error) {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return 0, err
	}
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return 0, err
	}

	delivery := domain.NewDelivery(member.Address)
	line, err := domain.NewOrderItem(item, item.Price, count)
	if err != nil {
		return 0, err
	}
	order := domain.CreateOrder(member, delivery, line)

	err = s.db.WithinTx(ctx, func(tx *querier.Tx) error {
		if err := s.items.AdjustStock(ctx, tx, itemID, -count); err != nil {
			return err
		}
		return s.orders.Save(ctx, tx, order)
	})
	if err != nil {
		return 0, err
	}
	return order.ID, nil
}

// CancelOrder cancels an order and releases its reserved stock. The domain
// rules run first (completed delivery and repeated cancel are rejected),
// then the status flip and the stock restore commit atomically. The flip is
// guarded on ORDERED state: if another request cancelled the order in
// between, zero rows match and the restore never runs, so stock is given
// back exactly once.
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := order.Cancel(); err != nil {
		return err
	}

	return s.db.WithinTx(ctx, func(tx *querier.Tx) error {
		flipped, err := s.orders.MarkCancelled(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !flipped {
			return &domain.InvalidStateError{Reason: "order already cancelled"}
		}

		for _, line := range order.Items {
			if err := s.items.AdjustStock(ctx, tx, line.ItemID, line.Count); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindOrder loads one order aggregate.
func (s *OrderService) FindOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.orders.FindByID(ctx, orderID)
}

// SearchOrders returns the orders matching the filter, materialized by the
// given fetch strategy.
func (s *OrderService) SearchOrders(ctx context.Context, search repository.OrderSearch, strategy repository.FetchStrategy, page *repository.Page) ([]*domain.Order, error) {
	return s.orders.Search(ctx, search, strategy, page)
}
