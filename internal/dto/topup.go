package dto

// CreateCheckoutSessionRequest asks for a hosted payment page for a top-up.
type CreateCheckoutSessionRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Amount int64  `json:"amount" binding:"required"`
}

// CheckoutSessionResponse carries the provider redirect URL.
type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

// TopUpRequest credits an account after the payment provider has confirmed
// the payment out-of-band.
type TopUpRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Amount int64  `json:"amount" binding:"required"`
}
