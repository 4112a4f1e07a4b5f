package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"app/internal/model"
	"app/internal/repository"
	"app/internal/util"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, identifier, password string) (*model.User, error)
	LoginOrRegisterGoogle(ctx context.Context, googleID, email, displayName string) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
}

type userService struct {
	userRepo  repository.UserRepository
	freeQuota int
	logger    zerolog.Logger
}

// NewUserService creates a new UserService with a scoped logger.
func NewUserService(userRepo repository.UserRepository, freeQuota int, logger zerolog.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		freeQuota: freeQuota,
		logger:    logger.With().Str("service", "UserService").Logger(),
	}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	existing, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	existing, err = s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	u := &model.User{
		Username:                  username,
		Email:                     email,
		Password:                  hash,
		Role:                      "user",
		DailyConversionsRemaining: s.freeQuota,
		LastConversionReset:       time.Now(),
	}
	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to create user")
		return nil, err
	}
	return u, nil
}

// Login accepts a username or an email address as the identifier.
func (s *userService) Login(ctx context.Context, identifier, password string) (*model.User, error) {
	u, err := s.userRepo.GetUserByUsername(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if u == nil {
		u, err = s.userRepo.GetUserByEmail(ctx, identifier)
		if err != nil {
			return nil, err
		}
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	// Accounts created through Google sign-in carry no password hash.
	if u.Password == "" || !util.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// LoginOrRegisterGoogle resolves a Google sign-in to a local account,
// linking by email when the Google ID has not been seen before.
func (s *userService) LoginOrRegisterGoogle(ctx context.Context, googleID, email, displayName string) (*model.User, error) {
	u, err := s.userRepo.GetUserByGoogleID(ctx, googleID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	u, err = s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		if err := s.userRepo.LinkGoogleAccount(ctx, u.ID, googleID, displayName); err != nil {
			s.logger.Error().Err(err).Int64("user_id", u.ID).Msg("Failed to link Google account")
			return nil, err
		}
		u.GoogleID = &googleID
		if displayName != "" {
			u.DisplayName = &displayName
		}
		return u, nil
	}

	username, err := s.availableUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	u = &model.User{
		Username:                  username,
		Email:                     email,
		GoogleID:                  &googleID,
		Role:                      "user",
		DailyConversionsRemaining: s.freeQuota,
		LastConversionReset:       time.Now(),
	}
	if displayName != "" {
		u.DisplayName = &displayName
	}
	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Failed to create user from Google sign-in")
		return nil, err
	}
	return u, nil
}

// availableUsername derives a username from the email local part,
// suffixing it when already taken.
func (s *userService) availableUsername(ctx context.Context, email string) (string, error) {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	if base == "" {
		base = "user"
	}
	candidate := base
	for i := 0; i < 5; i++ {
		existing, err := s.userRepo.GetUserByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = base + "_" + uuid.NewString()[:6]
	}
	return candidate, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
