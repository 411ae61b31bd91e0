package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// SESAPI is the slice of the SES v2 client the sender calls.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig names the sending identity.
type SESConfig struct {
	FromEmail string
	FromName  string
}

// SESSender delivers alerts through Amazon SES.
type SESSender struct {
	api    SESAPI
	from   mail.Address
	logger *logging.Logger
}

// NewSESSender returns nil when no client is supplied so callers can fall
// back to another provider.
func NewSESSender(api SESAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if api == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	name := cfg.FromName
	if name == "" {
		name = defaultFromName
	}
	return &SESSender{api: api, from: mail.Address{Name: name, Address: cfg.FromEmail}, logger: logger}
}

func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if msg.To == "" {
		return errors.New("notify: ses: recipient required")
	}
	to := msg.To
	if msg.ToName != "" {
		to = (&mail.Address{Name: msg.ToName, Address: msg.To}).String()
	}

	body := &sestypes.Body{}
	if msg.Body != "" {
		body.Text = utf8Content(msg.Body)
	}
	if msg.HTML != "" {
		body.Html = utf8Content(msg.HTML)
	}

	out, err := s.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from.String()),
		Destination:      &sestypes.Destination{ToAddresses: []string{to}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{Subject: utf8Content(msg.Subject), Body: body},
		},
	})
	if err != nil {
		s.logger.Error("ses send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: ses send: %w", err)
	}
	s.logger.Info("alert email sent", "provider", "ses", "to", msg.To, "message_id", aws.ToString(out.MessageId))
	return nil
}

func utf8Content(data string) *sestypes.Content {
	return &sestypes.Content{Data: aws.String(data), Charset: aws.String("UTF-8")}
}
