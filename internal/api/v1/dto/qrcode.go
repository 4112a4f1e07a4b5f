package dto

import "time"

// QRCodeOptionsDTO mirrors the renderer options; every field is optional
type QRCodeOptionsDTO struct {
	Color           string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	BackgroundColor string `json:"backgroundColor,omitempty" validate:"omitempty,hexcolor"`
	Size            int    `json:"size,omitempty" validate:"omitempty,min=50,max=2000"`
	Margin          int    `json:"margin,omitempty" validate:"omitempty,min=0,max=20"`
}

// QRCodeCreateDTO is used for incoming QR code generation requests
type QRCodeCreateDTO struct {
	Content string            `json:"content" validate:"required,max=2048"`
	Type    string            `json:"type,omitempty" validate:"omitempty,oneof=url text email"`
	Name    string            `json:"name,omitempty" validate:"omitempty,max=128"`
	Options *QRCodeOptionsDTO `json:"options,omitempty"`
}

// QRCodeItemDTO is one row of a user's QR code history
type QRCodeItemDTO struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// QRCodeRecordDTO is the full stored QR record
type QRCodeRecordDTO struct {
	ID        int64             `json:"id"`
	Content   string            `json:"content"`
	Type      string            `json:"type"`
	Name      string            `json:"name"`
	Options   *QRCodeOptionsDTO `json:"options,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// QRCodeResponseDTO is returned after generating a QR code
type QRCodeResponseDTO struct {
	QRCode QRCodeRecordDTO `json:"qrCode"`
	QRSvg  string          `json:"qrSvg"`
}
