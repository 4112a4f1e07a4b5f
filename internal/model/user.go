package model

import "time"

// User represents an account in the system.
type User struct {
	ID                        int64     `db:"id" json:"id"`
	Username                  string    `db:"username" json:"username"`
	Email                     string    `db:"email" json:"email"`
	Password                  string    `db:"password" json:"-"`
	GoogleID                  *string   `db:"google_id" json:"google_id,omitempty"`
	DisplayName               *string   `db:"display_name" json:"display_name,omitempty"`
	Role                      string    `db:"role" json:"role"`
	DailyConversionsRemaining int       `db:"daily_conversions_remaining" json:"daily_conversions_remaining"`
	LastConversionReset       time.Time `db:"last_conversion_reset" json:"last_conversion_reset"`
	StripeCustomerID          *string   `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID      *string   `db:"stripe_subscription_id" json:"stripe_subscription_id,omitempty"`
	IsPro                     bool      `db:"is_pro" json:"is_pro"`
	CreatedAt                 time.Time `db:"created_at" json:"created_at"`
}
