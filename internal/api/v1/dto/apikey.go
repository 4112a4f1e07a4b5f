package dto

import "time"

// APIKeyCreateDTO is used for incoming key creation requests
type APIKeyCreateDTO struct {
	Name string `json:"name" validate:"required,max=64"`
}

// APIKeyCreatedDTO carries the full key value; it is only returned once
type APIKeyCreatedDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKeyItemDTO is one row of a key listing, with the key value masked
type APIKeyItemDTO struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Key       string     `json:"key"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
