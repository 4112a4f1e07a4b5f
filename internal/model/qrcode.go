package model

import "time"

// QRCodeOptions are the rendering parameters stored with a QR record. The
// rendered artifact itself is never persisted; these are enough to regenerate it.
type QRCodeOptions struct {
	Color           string `json:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Size            int    `json:"size,omitempty"`
	Margin          int    `json:"margin,omitempty"`
}

// QRCode represents a generated QR code owned by one user.
type QRCode struct {
	ID        int64          `db:"id" json:"id"`
	UserID    int64          `db:"user_id" json:"user_id"`
	Content   string         `db:"content" json:"content"`
	Type      string         `db:"type" json:"type"`
	Name      string         `db:"name" json:"name"`
	Options   *QRCodeOptions `db:"options" json:"options,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
