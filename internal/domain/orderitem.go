package domain

// OrderItem is one order line: a reference to an Item plus the price and
// quantity captured at order time. Price and count are immutable once
// created; the snapshot price is decoupled from the item's current price.
type OrderItem struct {
	ID         int64
	OrderID    int64
	ItemID     int64
	Item       *Item
	OrderPrice int
	Count      int
}

// NewOrderItem snapshots the given price, reserves stock on the item, and
// returns the line. The stock reservation fails with InsufficientStockError
// when the item cannot cover the count.
func NewOrderItem(item *Item, orderPrice, count int) (*OrderItem, error) {
	if err := item.RemoveStock(count); err != nil {
		return nil, err
	}
	return &OrderItem{
		ItemID:     item.ID,
		Item:       item,
		OrderPrice: orderPrice,
		Count:      count,
	}, nil
}

// Cancel releases the reserved stock back to the item.
func (oi *OrderItem) Cancel() {
	if oi.Item != nil {
		oi.Item.AddStock(oi.Count)
	}
}

// TotalPrice is the line total: snapshot price times quantity.
func (oi *OrderItem) TotalPrice() int {
	return oi.OrderPrice * oi.Count
}
