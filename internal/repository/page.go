// Package repository implements persistent storage for the retail domain:
// simple key-value repositories for members, items and categories, and the
// order repository with its competing fetch strategies.
package repository

import "fmt"

// DefaultLimit is the page size used when the caller does not set one.
const DefaultLimit = 100

// Page is an offset/limit pagination window.
type Page struct {
	Offset int
	Limit  int
}

// NewPage creates a validated pagination window.
func NewPage(offset, limit int) (*Page, error) {
	p := &Page{Offset: offset, Limit: limit}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the window bounds, applying the default limit when unset.
func (p *Page) Validate() error {
	if p.Offset < 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("offset must be >= 0, got %d", p.Offset)}
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit < 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("limit must be >= 1, got %d", p.Limit)}
	}
	return nil
}

// ConfigurationError is returned when a caller requests an unsupported
// strategy/pagination combination. It fails fast, before any query executes.
type ConfigurationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}
