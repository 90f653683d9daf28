package repository

import (
	"orderkit/internal/domain"
	"orderkit/pkg/predicate"
)

// MaxSearchResults caps unpaginated searches so an unfiltered query cannot
// sweep the whole table.
const MaxSearchResults = 1000

// OrderSearch is the optional-field filter for order queries. A nil Status
// and empty MemberName mean an unfiltered search; both set means AND.
type OrderSearch struct {
	Status     *domain.OrderStatus
	MemberName string
}

// IsZero reports whether no filter field is set.
func (s OrderSearch) IsZero() bool {
	return s.Status == nil && s.MemberName == ""
}

// Conditions compiles the active filter fields into bound predicates against
// the orders (o) and members (m) aliases.
func (s OrderSearch) Conditions() []predicate.Condition {
	var conds []predicate.Condition
	if s.Status != nil {
		conds = append(conds, predicate.Eq("o.status", string(*s.Status)))
	}
	if s.MemberName != "" {
		conds = append(conds, predicate.Contains("m.name", s.MemberName))
	}
	return conds
}
