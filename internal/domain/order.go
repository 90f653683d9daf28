package domain

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// StatusOrdered is the initial state of every order.
	StatusOrdered OrderStatus = "ORDERED"
	// StatusCancelled is terminal; a cancelled order never becomes
	// ordered again.
	StatusCancelled OrderStatus = "CANCELLED"
)

// Order is the aggregate root. It references exactly one Member (set once at
// creation, never reassigned) and exclusively owns its Delivery and its
// OrderItem collection; both are destroyed with the order.
type Order struct {
	ID         int64
	MemberID   int64
	Member     *Member
	DeliveryID int64
	Delivery   *Delivery
	Items      []*OrderItem
	OrderDate  time.Time
	Status     OrderStatus
}

// CreateOrder constructs an order and wires the delivery and lines to it.
// Only in-memory wiring happens here; persisting the aggregate is the
// caller's responsibility.
func CreateOrder(member *Member, delivery *Delivery, items ...*OrderItem) *Order {
	o := &Order{
		MemberID:  member.ID,
		Member:    member,
		Delivery:  delivery,
		OrderDate: time.Now(),
		Status:    StatusOrdered,
	}
	o.Items = append(o.Items, items...)
	return o
}

// Cancel flips the order to CANCELLED and releases the stock every line had
// reserved. It is rejected when the delivery already completed, and it is
// terminal: cancelling twice fails rather than restoring stock again.
func (o *Order) Cancel() error {
	if o.Delivery != nil && o.Delivery.Status == DeliveryComplete {
		return &InvalidStateError{Reason: "delivery already completed, order cannot be cancelled"}
	}
	if o.Status == StatusCancelled {
		return &InvalidStateError{Reason: "order already cancelled"}
	}

	o.Status = StatusCancelled
	for _, item := range o.Items {
		item.Cancel()
	}
	return nil
}

// TotalPrice sums the line totals. Pure read, no side effects.
func (o *Order) TotalPrice() int {
	total := 0
	for _, item := range o.Items {
		total += item.TotalPrice()
	}
	return total
}
