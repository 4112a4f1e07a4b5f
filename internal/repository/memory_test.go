package repository

import (
	"context"
	"testing"
	"time"

	"app/internal/model"
)

func newTestUser(t *testing.T, s *MemoryStore, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:                  username,
		Email:                     username + "@example.com",
		Role:                      "user",
		DailyConversionsRemaining: 2,
		LastConversionReset:       time.Now(),
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	return u
}

func TestMemoryStoreUserLookups(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newTestUser(t, s, "Alice")

	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername returned error: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatal("expected case-insensitive username lookup to find the user")
	}

	got, err = s.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail returned error: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatal("expected case-insensitive email lookup to find the user")
	}

	got, err = s.GetUserByID(ctx, 999)
	if err != nil {
		t.Fatalf("GetUserByID returned error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown user ID")
	}
}

func TestMemoryStoreDuplicateUser(t *testing.T) {
	s := NewMemoryStore()
	newTestUser(t, s, "bob")

	dup := &model.User{Username: "BOB", Email: "other@example.com"}
	if err := s.CreateUser(context.Background(), dup); err == nil {
		t.Fatal("expected error for duplicate username")
	}
	dup = &model.User{Username: "carol", Email: "bob@example.com"}
	if err := s.CreateUser(context.Background(), dup); err == nil {
		t.Fatal("expected error for duplicate email")
	}
}

func TestMemoryStoreCopyOnReturn(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newTestUser(t, s, "dave")

	got, _ := s.GetUserByID(ctx, u.ID)
	got.Username = "mutated"

	again, _ := s.GetUserByID(ctx, u.ID)
	if again.Username != "dave" {
		t.Fatal("mutating a returned user must not affect the store")
	}
}

func TestMemoryStoreQuotaDecrement(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newTestUser(t, s, "erin")

	for i := 0; i < 2; i++ {
		ok, err := s.DecrementDailyConversions(ctx, u.ID)
		if err != nil {
			t.Fatalf("DecrementDailyConversions returned error: %v", err)
		}
		if !ok {
			t.Fatalf("expected decrement %d to succeed", i+1)
		}
	}
	ok, err := s.DecrementDailyConversions(ctx, u.ID)
	if err != nil {
		t.Fatalf("DecrementDailyConversions returned error: %v", err)
	}
	if ok {
		t.Fatal("expected decrement to fail once the quota is exhausted")
	}

	if err := s.IncrementDailyConversions(ctx, u.ID); err != nil {
		t.Fatalf("IncrementDailyConversions returned error: %v", err)
	}
	ok, _ = s.DecrementDailyConversions(ctx, u.ID)
	if !ok {
		t.Fatal("expected decrement to succeed after a refund")
	}
}

func TestMemoryStoreQuotaReset(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	stale := &model.User{
		Username:            "frank",
		Email:               "frank@example.com",
		LastConversionReset: time.Now().Add(-25 * time.Hour),
	}
	if err := s.CreateUser(ctx, stale); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	fresh := newTestUser(t, s, "grace")

	n, err := s.ResetDailyConversions(ctx, 24*time.Hour, 5)
	if err != nil {
		t.Fatalf("ResetDailyConversions returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 user reset, got %d", n)
	}

	got, _ := s.GetUserByID(ctx, stale.ID)
	if got.DailyConversionsRemaining != 5 {
		t.Fatalf("expected stale user quota restored to 5, got %d", got.DailyConversionsRemaining)
	}
	got, _ = s.GetUserByID(ctx, fresh.ID)
	if got.DailyConversionsRemaining != 2 {
		t.Fatalf("expected fresh user quota untouched, got %d", got.DailyConversionsRemaining)
	}
}

func TestMemoryStoreConversionsNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := newTestUser(t, s, "heidi")

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		c := &model.Conversion{
			UserID:           u.ID,
			SourceFormat:     "pdf",
			TargetFormat:     "docx",
			OriginalFilename: name,
			Status:           model.ConversionStatusCompleted,
		}
		if err := s.CreateConversion(ctx, c); err != nil {
			t.Fatalf("CreateConversion returned error: %v", err)
		}
		// Distinct timestamps so ordering is deterministic.
		time.Sleep(time.Millisecond)
	}

	out, err := s.GetConversionsByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetConversionsByUserID returned error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 conversions, got %d", len(out))
	}
	if out[0].OriginalFilename != "c.pdf" {
		t.Fatalf("expected newest conversion first, got %q", out[0].OriginalFilename)
	}
}

func TestMemoryStoreAPIKeyRevocation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	owner := newTestUser(t, s, "ivan")
	other := newTestUser(t, s, "judy")

	k := &model.APIKey{UserID: owner.ID, Key: "convert_abc", Name: "ci"}
	if err := s.CreateAPIKey(ctx, k); err != nil {
		t.Fatalf("CreateAPIKey returned error: %v", err)
	}

	ok, err := s.RevokeAPIKey(ctx, k.ID, other.ID)
	if err != nil {
		t.Fatalf("RevokeAPIKey returned error: %v", err)
	}
	if ok {
		t.Fatal("expected revocation by a non-owner to fail")
	}

	ok, err = s.RevokeAPIKey(ctx, k.ID, owner.ID)
	if err != nil {
		t.Fatalf("RevokeAPIKey returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected revocation by the owner to succeed")
	}

	got, _ := s.GetAPIKeyByKey(ctx, "convert_abc")
	if got != nil {
		t.Fatal("expected revoked key to stop resolving")
	}
	keys, _ := s.GetAPIKeysByUserID(ctx, owner.ID)
	if len(keys) != 0 {
		t.Fatal("expected revoked key to disappear from listings")
	}

	ok, _ = s.RevokeAPIKey(ctx, k.ID, owner.ID)
	if ok {
		t.Fatal("expected double revocation to fail")
	}
}
