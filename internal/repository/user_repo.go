package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository defines account persistence, including the quota fields that
// live directly on the user row. The Get* methods return (nil, nil) when no
// row matches.
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error)
	LinkGoogleAccount(ctx context.Context, id int64, googleID, displayName string) error

	// DecrementDailyConversions atomically decrements the counter when it is
	// still positive and reports whether a row was affected. It must be a
	// single conditional update, never a load/check/save sequence.
	DecrementDailyConversions(ctx context.Context, id int64) (bool, error)
	IncrementDailyConversions(ctx context.Context, id int64) error
	// ResetDailyConversions restores the counter to quota for every account
	// whose last reset is at least olderThan in the past, and returns the
	// number of accounts reset.
	ResetDailyConversions(ctx context.Context, olderThan time.Duration, quota int) (int64, error)

	UpdateStripeInfo(ctx context.Context, id int64, customerID, subscriptionID string) error
	UpdateSubscriptionStatus(ctx context.Context, id int64, isPro bool) error
}

type userRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo creates a Postgres-backed UserRepository.
func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `id, username, email, password, google_id, display_name, role,
       daily_conversions_remaining, last_conversion_reset,
       stripe_customer_id, stripe_subscription_id, is_pro, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Password,
		&u.GoogleID,
		&u.DisplayName,
		&u.Role,
		&u.DailyConversionsRemaining,
		&u.LastConversionReset,
		&u.StripeCustomerID,
		&u.StripeSubscriptionID,
		&u.IsPro,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	const q = `
        INSERT INTO users (username, email, password, google_id, display_name, role,
                           daily_conversions_remaining, last_conversion_reset, is_pro)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at
    `
	err := r.pool.QueryRow(ctx, q,
		u.Username, u.Email, u.Password, u.GoogleID, u.DisplayName, u.Role,
		u.DailyConversionsRemaining, u.LastConversionReset, u.IsPro,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting user %s: %w", u.Username, err)
	}
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, q, username))
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *userRepo) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, googleID))
}

func (r *userRepo) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, customerID))
}

func (r *userRepo) LinkGoogleAccount(ctx context.Context, id int64, googleID, displayName string) error {
	const q = `
        UPDATE users
        SET google_id = $2,
            display_name = COALESCE(NULLIF($3, ''), display_name)
        WHERE id = $1
    `
	if _, err := r.pool.Exec(ctx, q, id, googleID, displayName); err != nil {
		return fmt.Errorf("linking google account for user %d: %w", id, err)
	}
	return nil
}

func (r *userRepo) DecrementDailyConversions(ctx context.Context, id int64) (bool, error) {
	const q = `
        UPDATE users
        SET daily_conversions_remaining = daily_conversions_remaining - 1
        WHERE id = $1
          AND daily_conversions_remaining > 0
    `
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("decrementing conversions for user %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *userRepo) IncrementDailyConversions(ctx context.Context, id int64) error {
	const q = `
        UPDATE users
        SET daily_conversions_remaining = daily_conversions_remaining + 1
        WHERE id = $1
    `
	if _, err := r.pool.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("refunding conversion for user %d: %w", id, err)
	}
	return nil
}

func (r *userRepo) ResetDailyConversions(ctx context.Context, olderThan time.Duration, quota int) (int64, error) {
	const q = `
        UPDATE users
        SET daily_conversions_remaining = $1,
            last_conversion_reset = NOW()
        WHERE last_conversion_reset <= NOW() - $2::interval
    `
	interval := fmt.Sprintf("%d seconds", int64(olderThan.Seconds()))
	tag, err := r.pool.Exec(ctx, q, quota, interval)
	if err != nil {
		return 0, fmt.Errorf("resetting daily conversions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *userRepo) UpdateStripeInfo(ctx context.Context, id int64, customerID, subscriptionID string) error {
	const q = `
        UPDATE users
        SET stripe_customer_id = NULLIF($2, ''),
            stripe_subscription_id = NULLIF($3, '')
        WHERE id = $1
    `
	if _, err := r.pool.Exec(ctx, q, id, customerID, subscriptionID); err != nil {
		return fmt.Errorf("updating stripe info for user %d: %w", id, err)
	}
	return nil
}

func (r *userRepo) UpdateSubscriptionStatus(ctx context.Context, id int64, isPro bool) error {
	const q = `UPDATE users SET is_pro = $2 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, isPro); err != nil {
		return fmt.Errorf("updating subscription status for user %d: %w", id, err)
	}
	return nil
}
