package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QRCodeRepository persists QR generation parameters. The rendered artifact
// is derived data and never stored.
type QRCodeRepository interface {
	CreateQRCode(ctx context.Context, qr *model.QRCode) error
	GetQRCodesByUserID(ctx context.Context, userID int64) ([]model.QRCode, error)
}

type qrCodeRepo struct {
	pool *pgxpool.Pool
}

// NewQRCodeRepo creates a Postgres-backed QRCodeRepository.
func NewQRCodeRepo(pool *pgxpool.Pool) QRCodeRepository {
	return &qrCodeRepo{pool: pool}
}

func (r *qrCodeRepo) CreateQRCode(ctx context.Context, qr *model.QRCode) error {
	var opts []byte
	if qr.Options != nil {
		b, err := json.Marshal(qr.Options)
		if err != nil {
			return fmt.Errorf("marshal qr options: %w", err)
		}
		opts = b
	}
	const q = `
        INSERT INTO qr_codes (user_id, content, type, name, options)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	err := r.pool.QueryRow(ctx, q, qr.UserID, qr.Content, qr.Type, qr.Name, opts).
		Scan(&qr.ID, &qr.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording qr code for user %d: %w", qr.UserID, err)
	}
	return nil
}

func (r *qrCodeRepo) GetQRCodesByUserID(ctx context.Context, userID int64) ([]model.QRCode, error) {
	const q = `
        SELECT id, user_id, content, type, name, options, created_at
        FROM qr_codes
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing qr codes for user %d: %w", userID, err)
	}
	defer rows.Close()

	var codes []model.QRCode
	for rows.Next() {
		var qr model.QRCode
		var rawOpts []byte
		if err := rows.Scan(&qr.ID, &qr.UserID, &qr.Content, &qr.Type, &qr.Name, &rawOpts, &qr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning qr code row: %w", err)
		}
		if len(rawOpts) > 0 {
			var opts model.QRCodeOptions
			if err := json.Unmarshal(rawOpts, &opts); err != nil {
				return nil, fmt.Errorf("unmarshal qr options for qr %d: %w", qr.ID, err)
			}
			qr.Options = &opts
		}
		codes = append(codes, qr)
	}
	return codes, rows.Err()
}
