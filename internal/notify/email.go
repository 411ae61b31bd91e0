// Package notify delivers crisis alert email to a user's emergency contact.
package notify

import (
	"context"
	"strings"
	"sync"

	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

const defaultFromName = "Wellness Buddy"

type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is provider-neutral. HTML is optional; providers derive it
// from Body when empty.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
	HTML    string
}

// StubEmailSender logs instead of sending and keeps what it was given, so
// local runs without a provider still show alerts firing.
type StubEmailSender struct {
	logger *logging.Logger

	mu   sync.Mutex
	sent []EmailMessage
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	s.logger.Info("email not sent, no provider configured", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Sent returns a copy of every message passed to Send.
func (s *StubEmailSender) Sent() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmailMessage(nil), s.sent...)
}

// SenderConfig names the provider ("sendgrid", "ses" or "stub") and the
// From identity shared by all of them.
type SenderConfig struct {
	Provider       string
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

// NewSender builds the configured provider. A provider missing its
// credentials degrades to the stub with a warning.
func NewSender(cfg SenderConfig, ses SESAPI, logger *logging.Logger) EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	var sender EmailSender
	switch provider {
	case "sendgrid":
		if sg := NewSendGridSender(SendGridConfig{APIKey: cfg.SendGridAPIKey, FromEmail: cfg.FromEmail, FromName: cfg.FromName}, logger); sg != nil {
			sender = sg
		}
	case "ses":
		if s := NewSESSender(ses, SESConfig{FromEmail: cfg.FromEmail, FromName: cfg.FromName}, logger); s != nil {
			sender = s
		}
	case "", "stub":
	default:
		logger.Warn("unknown email provider", "provider", provider)
	}
	if sender != nil {
		return sender
	}
	if provider == "sendgrid" || provider == "ses" {
		logger.Warn("email provider not fully configured, alerts will only be logged", "provider", provider)
	}
	return NewStubEmailSender(logger)
}
