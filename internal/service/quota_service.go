package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"app/internal/model"
	"app/internal/repository"
)

// QuotaService tracks per-user daily conversion allowances. Pro users
// are never counted against a quota.
type QuotaService interface {
	TryConsume(ctx context.Context, user *model.User) (bool, error)
	Refund(ctx context.Context, user *model.User) error
	ResetExpired(ctx context.Context) (int64, error)
	RunResetSweep(ctx context.Context)
}

type quotaService struct {
	userRepo      repository.UserRepository
	freeQuota     int
	resetAfter    time.Duration
	sweepInterval time.Duration
	logger        zerolog.Logger
}

// NewQuotaService creates a new QuotaService with a scoped logger.
func NewQuotaService(userRepo repository.UserRepository, freeQuota int, resetAfter, sweepInterval time.Duration, logger zerolog.Logger) QuotaService {
	return &quotaService{
		userRepo:      userRepo,
		freeQuota:     freeQuota,
		resetAfter:    resetAfter,
		sweepInterval: sweepInterval,
		logger:        logger.With().Str("service", "QuotaService").Logger(),
	}
}

// TryConsume reserves one conversion for the user. It returns false
// when the user has no conversions left today. The decrement is a
// single conditional update, so concurrent requests cannot overspend.
func (s *quotaService) TryConsume(ctx context.Context, user *model.User) (bool, error) {
	if user.IsPro {
		return true, nil
	}
	ok, err := s.userRepo.DecrementDailyConversions(ctx, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to decrement daily conversions")
		return false, err
	}
	return ok, nil
}

// Refund returns a previously consumed conversion, used when the
// conversion itself failed after the quota was charged.
func (s *quotaService) Refund(ctx context.Context, user *model.User) error {
	if user.IsPro {
		return nil
	}
	if err := s.userRepo.IncrementDailyConversions(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to refund daily conversion")
		return err
	}
	return nil
}

// ResetExpired restores the full allowance for every user whose last
// reset is older than the rolling window.
func (s *quotaService) ResetExpired(ctx context.Context) (int64, error) {
	return s.userRepo.ResetDailyConversions(ctx, s.resetAfter, s.freeQuota)
}

// RunResetSweep periodically resets expired allowances until the
// context is cancelled. Intended to run in its own goroutine.
func (s *quotaService) RunResetSweep(ctx context.Context) {
	s.logger.Info().Dur("interval", s.sweepInterval).Msg("Starting quota reset sweep")
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Quota reset sweep stopped")
			return
		case <-ticker.C:
			n, err := s.ResetExpired(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("Quota reset sweep failed")
				continue
			}
			if n > 0 {
				s.logger.Info().Int64("users_reset", n).Msg("Reset daily conversion allowances")
			}
		}
	}
}
