package response

import "instructor-portal/internal/data/entity"

type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	URL         string `json:"url"`
	AmountTotal int64  `json:"amount_total"`
}

type ConfirmationResponse struct {
	SessionID        string             `json:"session_id"`
	CustomerEmail    string             `json:"customer_email"`
	AmountTotal      int64              `json:"amount_total"`
	Currency         string             `json:"currency"`
	Items            []entity.OrderLine `json:"items"`
	AlreadyConfirmed bool               `json:"already_confirmed"`
	// NotificationErrors lists emails that could not be sent
	NotificationErrors []string `json:"notification_errors,omitempty"`
}
