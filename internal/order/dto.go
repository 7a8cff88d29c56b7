package order

// LineRequest is one requested product and quantity.
// swagger:model OrderItemCreate
type LineRequest struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   example:"2"`
}

// PlaceOrderRequest payload of order creation. The owner is the
// authenticated account, never a field of the body.
// swagger:model OrderCreate
type PlaceOrderRequest struct {
	Items []LineRequest `json:"items"`
}
