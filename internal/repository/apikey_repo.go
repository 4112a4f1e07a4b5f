package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// APIKeyRepository persists bearer credentials. Revocation is a soft flip of
// the active flag so that a revoked token can never authorize again while its
// audit trail survives.
type APIKeyRepository interface {
	CreateAPIKey(ctx context.Context, k *model.APIKey) error
	GetAPIKeysByUserID(ctx context.Context, userID int64) ([]model.APIKey, error)
	// GetAPIKeyByKey returns only active keys; revoked tokens resolve to (nil, nil).
	GetAPIKeyByKey(ctx context.Context, key string) (*model.APIKey, error)
	// RevokeAPIKey deactivates the key only when it belongs to userID, and
	// reports whether a key was revoked. A foreign or unknown id is false.
	RevokeAPIKey(ctx context.Context, id, userID int64) (bool, error)
	TouchAPIKey(ctx context.Context, id int64) error
}

type apiKeyRepo struct {
	pool *pgxpool.Pool
}

// NewAPIKeyRepo creates a Postgres-backed APIKeyRepository.
func NewAPIKeyRepo(pool *pgxpool.Pool) APIKeyRepository {
	return &apiKeyRepo{pool: pool}
}

func (r *apiKeyRepo) CreateAPIKey(ctx context.Context, k *model.APIKey) error {
	const q = `
        INSERT INTO api_keys (user_id, key, name, active)
        VALUES ($1, $2, $3, TRUE)
        RETURNING id, active, created_at
    `
	err := r.pool.QueryRow(ctx, q, k.UserID, k.Key, k.Name).
		Scan(&k.ID, &k.Active, &k.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting api key for user %d: %w", k.UserID, err)
	}
	return nil
}

func (r *apiKeyRepo) GetAPIKeysByUserID(ctx context.Context, userID int64) ([]model.APIKey, error) {
	const q = `
        SELECT id, user_id, key, name, last_used, active, created_at
        FROM api_keys
        WHERE user_id = $1 AND active
        ORDER BY created_at DESC
    `
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing api keys for user %d: %w", userID, err)
	}
	defer rows.Close()

	var keys []model.APIKey
	for rows.Next() {
		var k model.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Key, &k.Name, &k.LastUsed, &k.Active, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning api key row: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *apiKeyRepo) GetAPIKeyByKey(ctx context.Context, key string) (*model.APIKey, error) {
	const q = `
        SELECT id, user_id, key, name, last_used, active, created_at
        FROM api_keys
        WHERE key = $1 AND active
    `
	var k model.APIKey
	err := r.pool.QueryRow(ctx, q, key).
		Scan(&k.ID, &k.UserID, &k.Key, &k.Name, &k.LastUsed, &k.Active, &k.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("looking up api key: %w", err)
	}
	return &k, nil
}

func (r *apiKeyRepo) RevokeAPIKey(ctx context.Context, id, userID int64) (bool, error) {
	const q = `
        UPDATE api_keys
        SET active = FALSE
        WHERE id = $1 AND user_id = $2 AND active
    `
	tag, err := r.pool.Exec(ctx, q, id, userID)
	if err != nil {
		return false, fmt.Errorf("revoking api key %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *apiKeyRepo) TouchAPIKey(ctx context.Context, id int64) error {
	const q = `UPDATE api_keys SET last_used = NOW() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("touching api key %d: %w", id, err)
	}
	return nil
}
