package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"app/internal/model"
	"app/internal/repository"
	"app/internal/util"
)

var (
	ErrAPIKeyNotFound = errors.New("api key not found")
	ErrInvalidAPIKey  = errors.New("invalid api key")
	ErrProRequired    = errors.New("pro subscription required")
)

// APIKeyService manages programmatic access keys. Keys are a pro
// feature: creation requires an active subscription, and a key stops
// resolving if its owner drops back to the free plan.
type APIKeyService interface {
	Create(ctx context.Context, user *model.User, name string) (*model.APIKey, error)
	List(ctx context.Context, userID int64) ([]model.APIKey, error)
	Revoke(ctx context.Context, userID, keyID int64) error
	Resolve(ctx context.Context, token string) (*model.User, error)
}

type apiKeyService struct {
	apiKeyRepo repository.APIKeyRepository
	userRepo   repository.UserRepository
	logger     zerolog.Logger
}

// NewAPIKeyService creates a new APIKeyService with a scoped logger.
func NewAPIKeyService(apiKeyRepo repository.APIKeyRepository, userRepo repository.UserRepository, logger zerolog.Logger) APIKeyService {
	return &apiKeyService{
		apiKeyRepo: apiKeyRepo,
		userRepo:   userRepo,
		logger:     logger.With().Str("service", "APIKeyService").Logger(),
	}
}

// Create issues a new key. The full key value is only returned here;
// subsequent listings expose a masked prefix.
func (s *apiKeyService) Create(ctx context.Context, user *model.User, name string) (*model.APIKey, error) {
	if !user.IsPro {
		return nil, ErrProRequired
	}
	token, err := util.GenerateAPIKey()
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate API key")
		return nil, err
	}
	k := &model.APIKey{
		UserID: user.ID,
		Key:    token,
		Name:   name,
		Active: true,
	}
	if err := s.apiKeyRepo.CreateAPIKey(ctx, k); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to store API key")
		return nil, err
	}
	return k, nil
}

// List returns the user's active keys with masked key values.
func (s *apiKeyService) List(ctx context.Context, userID int64) ([]model.APIKey, error) {
	keys, err := s.apiKeyRepo.GetAPIKeysByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range keys {
		keys[i].Key = keys[i].MaskedKey()
	}
	return keys, nil
}

// Revoke deactivates a key. A key belonging to another user is
// indistinguishable from a missing one.
func (s *apiKeyService) Revoke(ctx context.Context, userID, keyID int64) error {
	ok, err := s.apiKeyRepo.RevokeAPIKey(ctx, keyID, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Int64("key_id", keyID).Msg("Failed to revoke API key")
		return err
	}
	if !ok {
		return ErrAPIKeyNotFound
	}
	return nil
}

// Resolve authenticates a raw key value and returns its owner.
func (s *apiKeyService) Resolve(ctx context.Context, token string) (*model.User, error) {
	k, err := s.apiKeyRepo.GetAPIKeyByKey(ctx, token)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, ErrInvalidAPIKey
	}
	u, err := s.userRepo.GetUserByID(ctx, k.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsPro {
		return nil, ErrInvalidAPIKey
	}
	if err := s.apiKeyRepo.TouchAPIKey(ctx, k.ID); err != nil {
		s.logger.Warn().Err(err).Int64("key_id", k.ID).Msg("Failed to update API key last_used")
	}
	return u, nil
}
