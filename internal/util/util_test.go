package util

import (
	"strings"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}
	claims, err := ValidateJWT(token, "secret")
	if err != nil {
		t.Fatalf("ValidateJWT returned error: %v", err)
	}
	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(1, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}
	if _, err := ValidateJWT(token, "other-secret"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT(1, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}
	if _, err := ValidateJWT(token, "secret"); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plaintext password")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatal("expected correct password to verify")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey returned error: %v", err)
	}
	if !strings.HasPrefix(key, "convert_") {
		t.Fatalf("expected convert_ prefix, got %q", key)
	}
	if len(key) != len("convert_")+48 {
		t.Fatalf("expected 48 hex chars after the prefix, got %d", len(key)-len("convert_"))
	}
	other, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey returned error: %v", err)
	}
	if key == other {
		t.Fatal("expected distinct keys")
	}
}
