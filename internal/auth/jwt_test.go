package auth

import (
	"errors"
	"testing"
	"time"

	"tripmate/internal/core"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("unit-test-secret-key", time.Hour)
	user := &core.User{ID: "user-1", Email: "jwt@example.com"}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "jwt@example.com" {
		t.Errorf("Validate() claims = %+v", claims)
	}
}

func TestJWTExpired(t *testing.T) {
	manager := NewJWTManager("unit-test-secret-key", -time.Minute)
	token, err := manager.Generate(&core.User{ID: "user-1", Email: "old@example.com"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-number-one-aa", time.Hour).
		Generate(&core.User{ID: "user-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := NewJWTManager("secret-number-two-bb", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTGarbage(t *testing.T) {
	manager := NewJWTManager("unit-test-secret-key", time.Hour)
	if _, err := manager.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
}
