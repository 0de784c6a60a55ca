package response

type ProductResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Images             []string `json:"images"`
	PriceID            string   `json:"price_id"`
	UnitAmount         int64    `json:"unit_amount"`
	Currency           string   `json:"currency"`
	RequiresInstructor bool     `json:"requires_instructor"`
}
