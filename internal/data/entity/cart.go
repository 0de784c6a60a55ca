package entity

// ProductRef is the snapshot of a product kept inside a cart.
type ProductRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	PriceID    string `json:"price_id"`
}

type CartItem struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
}

func (i CartItem) Subtotal() int64 {
	return i.Product.UnitAmount * int64(i.Quantity)
}
