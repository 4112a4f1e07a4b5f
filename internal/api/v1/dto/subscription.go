package dto

// CheckoutSessionCreateDTO selects the subscription plan to purchase
type CheckoutSessionCreateDTO struct {
	Plan string `json:"plan" validate:"required,oneof=monthly annual"`
}

// SessionURLResponseDTO carries a Stripe-hosted page URL
type SessionURLResponseDTO struct {
	URL string `json:"url"`
}
