// Package orderquery provides read-model projections over the order
// aggregate: flattened DTO shapes fetched straight into primitive-typed
// rows, bypassing aggregate hydration.
package orderquery

import (
	"time"

	"orderkit/internal/domain"
)

// OrderSummary is the collection-free projection: one row per order with
// member name and delivery address, no lines.
type OrderSummary struct {
	OrderID    int64
	MemberName string
	OrderDate  time.Time
	Status     domain.OrderStatus
	Address    domain.Address
}

// ItemLine is one order line in a read model.
type ItemLine struct {
	OrderID    int64
	ItemName   string
	OrderPrice int
	Count      int
}

// OrderView is the full read model: summary fields plus the line list.
// Identity is defined solely by OrderID; two views with the same id are the
// same logical record regardless of how they were constructed.
type OrderView struct {
	OrderSummary
	Items []ItemLine
}

// FlatRow is one row of the denormalized cross product order × line × item.
// Parent-level fields repeat on every row of the same order.
type FlatRow struct {
	OrderID    int64
	MemberName string
	OrderDate  time.Time
	Status     domain.OrderStatus
	Address    domain.Address
	ItemName   string
	OrderPrice int
	Count      int
}
