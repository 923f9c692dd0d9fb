package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

// Mailer delivers outbound mail. Template rendering and transport live
// outside this service; the grading pipeline only hands off recipient,
// subject, and body.
type Mailer interface {
	Send(ctx context.Context, to, subject, message string) error
}

// LogMailer is a basic provider that logs deliveries.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer constructs a logging provider.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "mailer").Logger()}
}

// Send logs the delivery and returns nil to indicate success.
func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.logger.Info().Str("to", to).Str("subject", subject).Msg("email delivered")

	return nil
}
