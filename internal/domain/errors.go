// Package domain defines the order aggregate (Order, Member, Delivery,
// OrderItem, Item, Category) and the business operations that belong to it.
package domain

import "fmt"

// InsufficientStockError is returned when a stock decrement would push an
// item's stock quantity below zero.
type InsufficientStockError struct {
	ItemID    int64
	Requested int
	Available int
}

// Error implements the error interface.
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

// InvalidStateError is returned when a business rule rejects a state
// transition, e.g. cancelling an order whose delivery already completed.
type InvalidStateError struct {
	Reason string
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.Reason
}

// DuplicateError is returned when a domain-level uniqueness rule is
// violated, e.g. registering a member under an existing name.
type DuplicateError struct {
	Entity string
	Name   string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %q already exists", e.Entity, e.Name)
}
