package model

import "time"

// ConversionStatusCompleted is the only status the ledger records: entries
// are appended after the dispatcher succeeds, never for failed attempts.
const ConversionStatusCompleted = "completed"

// Conversion is one append-only ledger entry for a completed conversion.
type Conversion struct {
	ID                int64     `db:"id" json:"id"`
	UserID            int64     `db:"user_id" json:"user_id"`
	SourceFormat      string    `db:"source_format" json:"source_format"`
	TargetFormat      string    `db:"target_format" json:"target_format"`
	OriginalFilename  string    `db:"original_filename" json:"original_filename"`
	ConvertedFilename string    `db:"converted_filename" json:"converted_filename"`
	Status            string    `db:"status" json:"status"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
