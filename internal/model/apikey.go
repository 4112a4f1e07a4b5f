package model

import "time"

// APIKey is an opaque bearer credential standing in for session auth.
// The plaintext Key is returned to the holder exactly once, at creation.
type APIKey struct {
	ID        int64      `db:"id" json:"id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	Key       string     `db:"key" json:"key"`
	Name      string     `db:"name" json:"name"`
	LastUsed  *time.Time `db:"last_used" json:"last_used,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// MaskedKey returns the key with everything after the prefix and the first
// four token characters replaced, for bulk display in key listings.
func (k *APIKey) MaskedKey() string {
	const visible = 12
	if len(k.Key) <= visible {
		return k.Key
	}
	return k.Key[:visible] + "..."
}
