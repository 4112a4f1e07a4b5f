package repository

import (
	"context"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversionRepository is the append-only conversion ledger. Entries are
// immutable once created; there is no update or delete.
type ConversionRepository interface {
	CreateConversion(ctx context.Context, c *model.Conversion) error
	GetConversionsByUserID(ctx context.Context, userID int64) ([]model.Conversion, error)
}

type conversionRepo struct {
	pool *pgxpool.Pool
}

// NewConversionRepo creates a Postgres-backed ConversionRepository.
func NewConversionRepo(pool *pgxpool.Pool) ConversionRepository {
	return &conversionRepo{pool: pool}
}

func (r *conversionRepo) CreateConversion(ctx context.Context, c *model.Conversion) error {
	const q = `
        INSERT INTO conversions (user_id, source_format, target_format,
                                 original_filename, converted_filename, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	err := r.pool.QueryRow(ctx, q,
		c.UserID, c.SourceFormat, c.TargetFormat,
		c.OriginalFilename, c.ConvertedFilename, c.Status,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording conversion for user %d: %w", c.UserID, err)
	}
	return nil
}

func (r *conversionRepo) GetConversionsByUserID(ctx context.Context, userID int64) ([]model.Conversion, error) {
	const q = `
        SELECT id, user_id, source_format, target_format,
               original_filename, converted_filename, status, created_at
        FROM conversions
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing conversions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var conversions []model.Conversion
	for rows.Next() {
		var c model.Conversion
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.SourceFormat, &c.TargetFormat,
			&c.OriginalFilename, &c.ConvertedFilename, &c.Status, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning conversion row: %w", err)
		}
		conversions = append(conversions, c)
	}
	return conversions, rows.Err()
}
