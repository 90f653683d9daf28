package domain

import "fmt"

// ItemKind discriminates the item variants stored in the single items table.
type ItemKind string

const (
	// KindBook is a book item.
	KindBook ItemKind = "book"
	// KindAlbum is a music album item.
	KindAlbum ItemKind = "album"
)

// BookDetails carries the book-specific payload.
type BookDetails struct {
	Author string
	ISBN   string
}

// AlbumDetails carries the album-specific payload.
type AlbumDetails struct {
	Artist string
}

// Item is a sellable product. Variants share one storage row discriminated
// by Kind; exactly one of the payload pointers matching Kind is set.
type Item struct {
	ID            int64
	Kind          ItemKind
	Name          string
	Price         int
	StockQuantity int

	Book  *BookDetails
	Album *AlbumDetails
}

// NewBook creates a book item.
func NewBook(name string, price, stock int, author, isbn string) *Item {
	return &Item{
		Kind:          KindBook,
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		Book:          &BookDetails{Author: author, ISBN: isbn},
	}
}

// NewAlbum creates an album item.
func NewAlbum(name string, price, stock int, artist string) *Item {
	return &Item{
		Kind:          KindAlbum,
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		Album:         &AlbumDetails{Artist: artist},
	}
}

// Validate checks that the variant payload matches the kind tag.
func (i *Item) Validate() error {
	switch i.Kind {
	case KindBook:
		if i.Book == nil || i.Album != nil {
			return fmt.Errorf("item %q: kind %s requires a book payload only", i.Name, i.Kind)
		}
	case KindAlbum:
		if i.Album == nil || i.Book != nil {
			return fmt.Errorf("item %q: kind %s requires an album payload only", i.Name, i.Kind)
		}
	default:
		return fmt.Errorf("item %q: unknown kind %q", i.Name, i.Kind)
	}
	return nil
}

// Label renders a display name for the item variant.
func (i *Item) Label() string {
	switch i.Kind {
	case KindBook:
		if i.Book != nil {
			return fmt.Sprintf("%s by %s", i.Name, i.Book.Author)
		}
	case KindAlbum:
		if i.Album != nil {
			return fmt.Sprintf("%s - %s", i.Name, i.Album.Artist)
		}
	}
	return i.Name
}

// AddStock increases the stock quantity.
func (i *Item) AddStock(quantity int) {
	i.StockQuantity += quantity
}

// RemoveStock decreases the stock quantity. The quantity may never go
// negative; a decrement past zero is rejected.
func (i *Item) RemoveStock(quantity int) error {
	rest := i.StockQuantity - quantity
	if rest < 0 {
		return &InsufficientStockError{
			ItemID:    i.ID,
			Requested: quantity,
			Available: i.StockQuantity,
		}
	}
	i.StockQuantity = rest
	return nil
}
