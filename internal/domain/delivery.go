package domain

// DeliveryStatus is the shipment state of an order's delivery.
type DeliveryStatus string

const (
	// DeliveryReady means the delivery has not left yet.
	DeliveryReady DeliveryStatus = "READY"
	// DeliveryInProgress means the delivery is underway.
	DeliveryInProgress DeliveryStatus = "IN_PROGRESS"
	// DeliveryComplete means the delivery arrived. A completed delivery
	// blocks order cancellation.
	DeliveryComplete DeliveryStatus = "COMPLETE"
)

// Delivery is exclusively owned by one Order and destroyed with it. The
// delivery→order back-reference is derived from orders.delivery_id rather
// than stored here.
type Delivery struct {
	ID      int64
	Address Address
	Status  DeliveryStatus
}

// NewDelivery creates a delivery to the given address in READY state.
func NewDelivery(address Address) *Delivery {
	return &Delivery{Address: address, Status: DeliveryReady}
}
