package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"app/internal/model"
)

// MemoryStore is the in-process storage backend. It implements every
// repository interface behind a single mutex, so the quota decrement and the
// revocation flag keep the same atomicity guarantees the Postgres backend
// gets from single-row conditional updates.
//
// It is selected at startup when no DATABASE_URL is configured, and is the
// backend the service tests run against.
type MemoryStore struct {
	mu sync.Mutex

	users       map[int64]*model.User
	conversions map[int64]*model.Conversion
	qrCodes     map[int64]*model.QRCode
	apiKeys     map[int64]*model.APIKey

	nextUserID       int64
	nextConversionID int64
	nextQRCodeID     int64
	nextAPIKeyID     int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:            make(map[int64]*model.User),
		conversions:      make(map[int64]*model.Conversion),
		qrCodes:          make(map[int64]*model.QRCode),
		apiKeys:          make(map[int64]*model.APIKey),
		nextUserID:       1,
		nextConversionID: 1,
		nextQRCodeID:     1,
		nextAPIKeyID:     1,
	}
}

var (
	_ UserRepository       = (*MemoryStore)(nil)
	_ ConversionRepository = (*MemoryStore)(nil)
	_ QRCodeRepository     = (*MemoryStore)(nil)
	_ APIKeyRepository     = (*MemoryStore)(nil)
)

// User operations

func (s *MemoryStore) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return errors.New("username already exists")
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return errors.New("email already exists")
		}
	}
	u.ID = s.nextUserID
	s.nextUserID++
	u.CreatedAt = time.Now()
	stored := *u
	s.users[u.ID] = &stored
	return nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.users[id]), nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == customerID {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) LinkGoogleAccount(ctx context.Context, id int64, googleID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.GoogleID = &googleID
	if displayName != "" {
		u.DisplayName = &displayName
	}
	return nil
}

func (s *MemoryStore) DecrementDailyConversions(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.DailyConversionsRemaining <= 0 {
		return false, nil
	}
	u.DailyConversionsRemaining--
	return true, nil
}

func (s *MemoryStore) IncrementDailyConversions(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.DailyConversionsRemaining++
	}
	return nil
}

func (s *MemoryStore) ResetDailyConversions(ctx context.Context, olderThan time.Duration, quota int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var reset int64
	for _, u := range s.users {
		if !u.LastConversionReset.After(cutoff) {
			u.DailyConversionsRemaining = quota
			u.LastConversionReset = time.Now()
			reset++
		}
	}
	return reset, nil
}

func (s *MemoryStore) UpdateStripeInfo(ctx context.Context, id int64, customerID, subscriptionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.StripeCustomerID = nilIfEmpty(customerID)
	u.StripeSubscriptionID = nilIfEmpty(subscriptionID)
	return nil
}

func (s *MemoryStore) UpdateSubscriptionStatus(ctx context.Context, id int64, isPro bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.IsPro = isPro
	return nil
}

// Conversion operations

func (s *MemoryStore) CreateConversion(ctx context.Context, c *model.Conversion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextConversionID
	s.nextConversionID++
	c.CreatedAt = time.Now()
	stored := *c
	s.conversions[c.ID] = &stored
	return nil
}

func (s *MemoryStore) GetConversionsByUserID(ctx context.Context, userID int64) ([]model.Conversion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Conversion
	for _, c := range s.conversions {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// QR code operations

func (s *MemoryStore) CreateQRCode(ctx context.Context, qr *model.QRCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	qr.ID = s.nextQRCodeID
	s.nextQRCodeID++
	qr.CreatedAt = time.Now()
	stored := *qr
	s.qrCodes[qr.ID] = &stored
	return nil
}

func (s *MemoryStore) GetQRCodesByUserID(ctx context.Context, userID int64) ([]model.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.QRCode
	for _, qr := range s.qrCodes {
		if qr.UserID == userID {
			out = append(out, *qr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// API key operations

func (s *MemoryStore) CreateAPIKey(ctx context.Context, k *model.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k.ID = s.nextAPIKeyID
	s.nextAPIKeyID++
	k.Active = true
	k.CreatedAt = time.Now()
	stored := *k
	s.apiKeys[k.ID] = &stored
	return nil
}

func (s *MemoryStore) GetAPIKeysByUserID(ctx context.Context, userID int64) ([]model.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.APIKey
	for _, k := range s.apiKeys {
		if k.UserID == userID && k.Active {
			out = append(out, *k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetAPIKeyByKey(ctx context.Context, key string) (*model.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.apiKeys {
		if k.Key == key && k.Active {
			copied := *k
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) RevokeAPIKey(ctx context.Context, id, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.apiKeys[id]
	if !ok || k.UserID != userID || !k.Active {
		return false, nil
	}
	k.Active = false
	return true, nil
}

func (s *MemoryStore) TouchAPIKey(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.apiKeys[id]; ok {
		now := time.Now()
		k.LastUsed = &now
	}
	return nil
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	copied := *u
	return &copied
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
