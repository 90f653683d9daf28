package domain

// Member is a registered customer. The member→orders navigation is not
// stored on the struct; orders for a member are recomputed by a foreign-key
// lookup, keeping ownership directional.
type Member struct {
	ID      int64
	Name    string
	Address Address
}
