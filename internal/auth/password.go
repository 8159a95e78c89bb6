package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"tripmate/internal/core"
	"tripmate/internal/storage"
)

// PasswordAuthenticator implements password-based authentication with
// bcrypt hashes.
type PasswordAuthenticator struct {
	store Store
}

func NewPasswordAuthenticator(store Store) *PasswordAuthenticator {
	return &PasswordAuthenticator{store: store}
}

// ValidateCredential checks the password against minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new, unverified account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, fullName, credential string) (*core.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	if _, _, err := a.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &core.User{
		Email:    email,
		FullName: fullName,
	}
	if err := a.store.CreateUser(ctx, user, string(hash)); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies email and password. The caller is responsible for
// the verification gate; this only checks the credential.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*core.User, error) {
	user, hash, err := a.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// HashPassword produces a bcrypt hash for password resets.
func HashPassword(credential string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
