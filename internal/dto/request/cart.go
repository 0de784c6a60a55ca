package request

type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=100"`
	// Quantity defaults to 1 when omitted
	Quantity *int `json:"quantity,omitempty" validate:"omitempty,min=1,max=100"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=100"`
}
