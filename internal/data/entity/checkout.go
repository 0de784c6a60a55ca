package entity

import "time"

// CheckoutNotification records a provider checkout session whose confirmations were sent.
type CheckoutNotification struct {
	SessionID     string    `db:"session_id"`
	CustomerEmail string    `db:"customer_email"`
	AmountTotal   int64     `db:"amount_total"`
	ProcessedAt   time.Time `db:"processed_at"`
}

// OrderLine is one purchased product as reconstructed from provider metadata.
type OrderLine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}
