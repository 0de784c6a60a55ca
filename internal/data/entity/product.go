package entity

// Product is catalog data maintained outside the app. Prices live with the payment provider.
type Product struct {
	ID                 string   `db:"id"`
	Name               string   `db:"name"`
	Description        string   `db:"description"`
	Images             []string `db:"images"`
	PriceID            string   `db:"price_id"`
	RequiresInstructor bool     `db:"requires_instructor"`
	Active             bool     `db:"active"`
}

// Price is a provider price resolved at read time. UnitAmount is in minor units.
type Price struct {
	ID          string
	UnitAmount  int64
	Currency    string
	ProductName string
}
