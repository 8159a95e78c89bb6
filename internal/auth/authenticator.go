// Package auth implements account registration, credential checks and the
// email-verification gate that every session has to pass before the rest
// of the API becomes reachable.
package auth

import (
	"context"
	"errors"
	"time"

	"tripmate/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidVerifyToken = errors.New("invalid or expired verification token")
)

// EmailNotVerifiedMessage is the user-facing text for a login attempt on an
// unverified account.
const EmailNotVerifiedMessage = "Please verify your email before logging in."

// Token purposes stored alongside single-use tokens.
const (
	purposeVerify = "verify"
	purposeReset  = "reset"
)

// Authenticator abstracts the credential scheme so the service layer does
// not care whether accounts are password-backed or delegated to an
// external identity provider.
type Authenticator interface {
	// Register creates a new account with the given credential and returns
	// the stored user.
	Register(ctx context.Context, email, fullName, credential string) (*core.User, error)

	// Authenticate verifies the credential and returns the matching user.
	Authenticate(ctx context.Context, email, credential string) (*core.User, error)

	// ValidateCredential checks the credential against the scheme's
	// minimum requirements without touching storage.
	ValidateCredential(credential string) error
}

// Store is the slice of the repository the auth package needs.
type Store interface {
	CreateUser(ctx context.Context, u *core.User, passwordHash string) error
	GetUserByEmail(ctx context.Context, email string) (*core.User, string, error)
	GetUserByID(ctx context.Context, id string) (*core.User, error)
	MarkEmailVerified(ctx context.Context, userID string) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	CreateToken(ctx context.Context, token, userID, purpose string, expiresAt time.Time) error
	ConsumeToken(ctx context.Context, token, purpose string) (string, error)
}
