package request

type CheckoutRequest struct {
	// Email overrides the signed-in account email on the receipt
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type ConfirmCheckoutRequest struct {
	SessionID string `json:"session_id" validate:"required,max=255"`
}
