package domain

// Category groups items hierarchically. Categories relate many-to-many with
// items through the category_items junction table, and form a tree through
// ParentID. The parent→children link is a non-owning index kept consistent
// by AddChild.
type Category struct {
	ID       int64
	Name     string
	ParentID *int64
	Children []*Category
	Items    []*Item
}

// AddChild attaches a child category, updating both directions of the link.
func (c *Category) AddChild(child *Category) {
	c.Children = append(c.Children, child)
	child.ParentID = &c.ID
}

// AddItem places an item into this category.
func (c *Category) AddItem(item *Item) {
	c.Items = append(c.Items, item)
}
