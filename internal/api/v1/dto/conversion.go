package dto

import "time"

// ConversionItemDTO is one row of a user's conversion history
type ConversionItemDTO struct {
	ID                int64     `json:"id"`
	SourceFormat      string    `json:"source_format"`
	TargetFormat      string    `json:"target_format"`
	OriginalFilename  string    `json:"original_filename"`
	ConvertedFilename string    `json:"converted_filename"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
