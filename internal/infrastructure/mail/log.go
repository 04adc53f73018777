package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskflow/task-manager/internal/core/ports"
)

// LogMailer writes the verification link to the log instead of sending mail.
// Used when no SMTP host is configured.
type LogMailer struct {
	appURL string
	logger zerolog.Logger
}

var _ ports.Mailer = (*LogMailer)(nil)

func NewLogMailer(appURL string, logger zerolog.Logger) *LogMailer {
	return &LogMailer{appURL: appURL, logger: logger}
}

func (m *LogMailer) SendVerification(_ context.Context, email, token string) error {
	m.logger.Info().
		Str("to", email).
		Str("link", VerificationLink(m.appURL, token)).
		Msg("verification email (not sent, SMTP disabled)")
	return nil
}
