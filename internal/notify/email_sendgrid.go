package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// alertCategory tags every message so alerts can be filtered in SendGrid.
const alertCategory = "wellness-alert"

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *logging.Logger
}

// NewSendGridSender returns nil without an API key.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	name := cfg.FromName
	if name == "" {
		name = defaultFromName
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(name, cfg.FromEmail),
		logger: logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return errors.New("notify: sendgrid client not configured")
	}

	resp, err := s.client.SendWithContext(ctx, buildSendGridMail(s.from, msg))
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Error("sendgrid rejected message", "status", resp.StatusCode, "body", resp.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid status %d", resp.StatusCode)
	}

	s.logger.Info("alert email sent", "provider", "sendgrid", "to", msg.To, "status", resp.StatusCode)
	return nil
}

// buildSendGridMail renders msg as a v3 payload. Plain-text bodies get an
// escaped HTML part so clients that prefer HTML still show them.
func buildSendGridMail(from *mail.Email, msg EmailMessage) *mail.SGMailV3 {
	htmlBody := msg.HTML
	if htmlBody == "" {
		htmlBody = "<p>" + strings.ReplaceAll(html.EscapeString(msg.Body), "\n", "<br>") + "</p>"
	}

	m := mail.NewV3Mail()
	m.SetFrom(from)
	m.Subject = msg.Subject
	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.To))
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/plain", msg.Body), mail.NewContent("text/html", htmlBody))
	m.AddCategories(alertCategory)
	return m
}
