package domain

// Address is an embedded value object shared by Member and Delivery.
type Address struct {
	City    string
	Street  string
	Zipcode string
}
