// Package email sends payment receipts.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/logging"
)

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
}

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Config struct {
	APIKey string
	From   string
}

// NewProvider returns the Resend provider when an API key is configured and
// a logging no-op otherwise.
func NewProvider(cfg Config, logger *slog.Logger) Provider {
	if cfg.APIKey == "" {
		return NewNoopProvider(logger)
	}
	return NewResendProvider(cfg.APIKey, cfg.From)
}

// NoopProvider records the send in the log and drops the message.
type NoopProvider struct {
	logger *slog.Logger
}

func NewNoopProvider(logger *slog.Logger) *NoopProvider {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NoopProvider{logger: logger}
}

func (n *NoopProvider) SendEmail(ctx context.Context, email *Email) error {
	if email == nil {
		return fmt.Errorf("email is required")
	}
	logging.FromContext(ctx, n.logger).InfoContext(ctx, "email delivery disabled, dropping message", "to", email.To, "subject", email.Subject)
	return nil
}
