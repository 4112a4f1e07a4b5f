package dto

import "time"

// RegisterDTO is used for incoming registration requests
type RegisterDTO struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginDTO accepts a username or email as the identifier
type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponseDTO is returned in API responses
type UserResponseDTO struct {
	ID                        int64     `json:"id"`
	Username                  string    `json:"username"`
	Email                     string    `json:"email"`
	DisplayName               string    `json:"display_name,omitempty"`
	IsPro                     bool      `json:"is_pro"`
	DailyConversionsRemaining int       `json:"daily_conversions_remaining"`
	CreatedAt                 time.Time `json:"created_at"`
}

// AuthResponseDTO is returned after a successful login or registration
type AuthResponseDTO struct {
	Token string          `json:"token"`
	User  UserResponseDTO `json:"user"`
}

// DashboardResponseDTO aggregates the signed-in user's profile and history
type DashboardResponseDTO struct {
	User            UserResponseDTO     `json:"user"`
	Conversions     []ConversionItemDTO `json:"conversions"`
	QRCodes         []QRCodeItemDTO     `json:"qr_codes"`
	ConversionCount int                 `json:"conversionCount"`
	QRCodeCount     int                 `json:"qrCodeCount"`
}
