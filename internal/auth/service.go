package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tripmate/internal/core"
	"tripmate/internal/log"
	"tripmate/internal/storage"
)

const (
	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = time.Hour
)

// Service orchestrates the account flows: registration with a mailed
// verification link, the verified-only login gate, and password resets.
type Service struct {
	store         Store
	authenticator Authenticator
	tokens        *JWTManager
	mailer        Mailer
	logger        *log.Logger
}

func NewService(store Store, authenticator Authenticator, tokens *JWTManager, mailer Mailer, logger *log.Logger) *Service {
	return &Service{
		store:         store,
		authenticator: authenticator,
		tokens:        tokens,
		mailer:        mailer,
		logger:        logger.WithComponent(log.ComponentAuth),
	}
}

// Register creates an unverified account and mails a verification link.
// The new user cannot log in until VerifyEmail succeeds.
func (s *Service) Register(ctx context.Context, email, fullName, password string) (*core.User, error) {
	user, err := s.authenticator.Register(ctx, email, fullName, password)
	if err != nil {
		return nil, err
	}

	if err := s.issueVerification(ctx, user); err != nil {
		// The account exists; the user can request a fresh link later.
		s.logger.WarnContext(ctx, "Verification mail failed",
			log.FieldUserID, user.ID,
			"error", err)
	}

	s.logger.InfoContext(ctx, "User registered",
		log.FieldUserID, user.ID,
		"email", user.Email)
	return user, nil
}

// Login authenticates the credential and enforces the verification gate.
// Unverified accounts get ErrEmailNotVerified and no session token.
func (s *Service) Login(ctx context.Context, email, password string) (*core.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	if !user.EmailVerified {
		s.logger.WarnContext(ctx, "Login blocked, email not verified",
			log.FieldUserID, user.ID)
		return nil, "", ErrEmailNotVerified
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}

	s.logger.InfoContext(ctx, "User logged in", log.FieldUserID, user.ID)
	return user, token, nil
}

// VerifyEmail consumes a verification token and flips the account's flag.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.store.ConsumeToken(ctx, token, purposeVerify)
	if err != nil {
		return ErrInvalidVerifyToken
	}
	if err := s.store.MarkEmailVerified(ctx, userID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	s.logger.InfoContext(ctx, "Email verified", log.FieldUserID, userID)
	return nil
}

// ResendVerification issues a fresh verification link for an unverified
// account. Unknown emails are silently ignored.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, _, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if user.EmailVerified {
		return nil
	}
	return s.issueVerification(ctx, user)
}

// RequestPasswordReset mails a reset link. Unknown emails are silently
// ignored so the endpoint does not leak which addresses exist.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, _, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token := uuid.New().String()
	if err := s.store.CreateToken(ctx, token, user.ID, purposeReset, time.Now().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	s.logger.InfoContext(ctx, "Password reset requested", log.FieldUserID, user.ID)
	return nil
}

// ResetPassword consumes a reset token and replaces the credential.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := s.authenticator.ValidateCredential(newPassword); err != nil {
		return err
	}

	userID, err := s.store.ConsumeToken(ctx, token, purposeReset)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "Password reset", log.FieldUserID, userID)
	return nil
}

// CurrentUser resolves a session token to its full user record.
func (s *Service) CurrentUser(ctx context.Context, token string) (*core.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *Service) issueVerification(ctx context.Context, user *core.User) error {
	token := uuid.New().String()
	if err := s.store.CreateToken(ctx, token, user.ID, purposeVerify, time.Now().Add(verifyTokenTTL)); err != nil {
		return fmt.Errorf("create verify token: %w", err)
	}
	if err := s.mailer.SendVerification(ctx, user.Email, token); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}
