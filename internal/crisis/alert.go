package crisis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wellnessbuddy/wellness-platform/internal/notify"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

const (
	// AlertSubject is the subject line of crisis alert emails.
	AlertSubject = "Crisis Alert from Wellness Buddy"

	// NoticeSent is appended to the reply when the alert email went out.
	NoticeSent = "⚠️ Crisis detected, email sent with hotline info."
	// NoticeFailed is appended when no alert could be delivered.
	NoticeFailed = "⚠️ Crisis detected, but alert failed. Please seek help immediately."
	// LifelineText is always shown alongside a crisis notice.
	LifelineText = "If you are in crisis, call or text 988 (Suicide & Crisis Lifeline) now."
)

// ErrNoRecipient is returned when neither an emergency contact nor a default
// recipient is available.
var ErrNoRecipient = errors.New("crisis: no alert recipient configured")

// Event describes one positive scan that should be escalated.
type Event struct {
	UserID         string
	MatchedKeyword string
	MessageText    string
	RecipientEmail string
}

// Notifier delivers crisis events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// ContactLookup resolves a user's emergency contact email.
type ContactLookup interface {
	Get(ctx context.Context, userID string) (string, error)
}

// Recorder captures crisis metrics.
type Recorder interface {
	ObserveCrisis(keyword string, notified bool)
}

// Outcome is the result of Alerter.Check.
type Outcome struct {
	Signal   Signal
	Notified bool
	Notice   string
}

// EmailNotifier sends crisis events as email.
type EmailNotifier struct {
	sender  notify.EmailSender
	hotline string
	logger  *logging.Logger
}

// NewEmailNotifier creates a notifier. hotline is optional.
func NewEmailNotifier(sender notify.EmailSender, hotline string, logger *logging.Logger) *EmailNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &EmailNotifier{sender: sender, hotline: strings.TrimSpace(hotline), logger: logger}
}

// Notify sends the alert email to event.RecipientEmail.
func (n *EmailNotifier) Notify(ctx context.Context, event Event) error {
	if n.sender == nil {
		return fmt.Errorf("crisis: email sender not configured")
	}
	if strings.TrimSpace(event.RecipientEmail) == "" {
		return ErrNoRecipient
	}
	if err := n.sender.Send(ctx, notify.EmailMessage{
		To:      event.RecipientEmail,
		Subject: AlertSubject,
		Body:    AlertBody(event.MessageText, n.hotline),
	}); err != nil {
		return fmt.Errorf("crisis: send alert: %w", err)
	}
	return nil
}

// AlertBody renders the alert email body.
func AlertBody(message, hotline string) string {
	body := fmt.Sprintf("Crisis detected in message: \"%s\".", message)
	if hotline != "" {
		body += fmt.Sprintf(" Please call this hotline: %s.", hotline)
	}
	return body
}

// AlerterConfig wires an Alerter.
type AlerterConfig struct {
	Scanner          *Scanner
	Notifier         Notifier
	Contacts         ContactLookup
	DefaultRecipient string
	Metrics          Recorder
	Logger           *logging.Logger
}

// Alerter scans messages and notifies an emergency contact on a match.
type Alerter struct {
	scanner          *Scanner
	notifier         Notifier
	contacts         ContactLookup
	defaultRecipient string
	metrics          Recorder
	logger           *logging.Logger
}

// NewAlerter creates an Alerter.
func NewAlerter(cfg AlerterConfig) *Alerter {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	scanner := cfg.Scanner
	if scanner == nil {
		scanner = NewScanner(nil, logger)
	}
	return &Alerter{
		scanner:          scanner,
		notifier:         cfg.Notifier,
		contacts:         cfg.Contacts,
		defaultRecipient: strings.TrimSpace(cfg.DefaultRecipient),
		metrics:          cfg.Metrics,
		logger:           logger,
	}
}

// Check scans text and, on a match, attempts to notify the user's emergency
// contact. Notification failures are reported through the Outcome, not as errors.
func (a *Alerter) Check(ctx context.Context, userID, text string) Outcome {
	sig := a.scanner.Detect(ctx, text)
	if !sig.Triggered {
		return Outcome{Signal: sig}
	}

	out := Outcome{Signal: sig}
	recipient := a.recipient(ctx, userID)
	switch {
	case a.notifier == nil:
		a.logger.Warn("crisis notifier not configured", "user_id", userID)
	case recipient == "":
		a.logger.Warn("crisis alert has no recipient", "user_id", userID)
	default:
		err := a.notifier.Notify(ctx, Event{
			UserID:         userID,
			MatchedKeyword: sig.MatchedKeyword,
			MessageText:    text,
			RecipientEmail: recipient,
		})
		if err != nil {
			a.logger.Error("crisis alert failed", "error", err, "user_id", userID)
		} else {
			out.Notified = true
		}
	}

	if out.Notified {
		out.Notice = NoticeSent + " " + LifelineText
	} else {
		out.Notice = NoticeFailed + " " + LifelineText
	}
	if a.metrics != nil {
		a.metrics.ObserveCrisis(sig.MatchedKeyword, out.Notified)
	}
	return out
}

func (a *Alerter) recipient(ctx context.Context, userID string) string {
	if a.contacts != nil {
		email, err := a.contacts.Get(ctx, userID)
		if err == nil && strings.TrimSpace(email) != "" {
			return strings.TrimSpace(email)
		}
		if err != nil {
			a.logger.Debug("emergency contact lookup failed", "error", err, "user_id", userID)
		}
	}
	return a.defaultRecipient
}
