package response

import "instructor-portal/internal/data/entity"

type CartItemResponse struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Quantity   int    `json:"quantity"`
	Subtotal   int64  `json:"subtotal"`
}

type CartResponse struct {
	Items    []CartItemResponse `json:"items"`
	Count    int                `json:"count"`
	Total    int64              `json:"total"`
	Currency string             `json:"currency,omitempty"`
}

func CartToResponse(items []entity.CartItem, count int, total int64) CartResponse {
	res := CartResponse{
		Items: make([]CartItemResponse, 0, len(items)),
		Count: count,
		Total: total,
	}
	for _, item := range items {
		res.Items = append(res.Items, CartItemResponse{
			ProductID:  item.Product.ID,
			Name:       item.Product.Name,
			UnitAmount: item.Product.UnitAmount,
			Currency:   item.Product.Currency,
			Quantity:   item.Quantity,
			Subtotal:   item.Subtotal(),
		})
		if res.Currency == "" {
			res.Currency = item.Product.Currency
		}
	}
	return res
}
