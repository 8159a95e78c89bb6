package auth

import (
	"context"

	"tripmate/internal/log"
)

// Mailer delivers verification and reset links. The production deployment
// plugs an SMTP or transactional-mail client in here.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes the links to the application log instead of sending
// mail. Useful for local development and tests.
type LogMailer struct {
	logger *log.Logger
}

func NewLogMailer(logger *log.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerification(ctx context.Context, email, token string) error {
	m.logger.InfoContext(ctx, "Verification mail",
		"email", email,
		"token", token)
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.logger.InfoContext(ctx, "Password reset mail",
		"email", email,
		"token", token)
	return nil
}
