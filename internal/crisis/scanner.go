// Package crisis flags chat messages that contain crisis-indicating phrases
// and routes alerts to an emergency contact.
package crisis

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

var crisisTracer = otel.Tracer("wellness/crisis-scanner")

// DefaultKeywords is the fixed keyword list, checked in order.
var DefaultKeywords = []string{"suicide", "self-harm", "hopeless", "kill myself", "end it all"}

// Signal is the result of scanning one message.
type Signal struct {
	Triggered      bool   `json:"triggered"`
	MatchedKeyword string `json:"keyword,omitempty"`
}

// Scan reports the first keyword from DefaultKeywords contained in text.
// Matching is case-insensitive substring containment, so "hopelessly" matches.
func Scan(text string) Signal {
	return scanWith(DefaultKeywords, text)
}

func scanWith(keywords []string, text string) Signal {
	if text == "" {
		return Signal{}
	}
	lowered := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return Signal{Triggered: true, MatchedKeyword: kw}
		}
	}
	return Signal{}
}

// Scanner wraps the keyword scan with tracing and logging.
type Scanner struct {
	keywords []string
	logger   *logging.Logger
}

// NewScanner creates a scanner. An empty keyword list means DefaultKeywords.
func NewScanner(keywords []string, logger *logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.Default()
	}
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	kws := make([]string, len(keywords))
	copy(kws, keywords)
	return &Scanner{keywords: kws, logger: logger}
}

// Keywords returns a copy of the configured keywords.
func (s *Scanner) Keywords() []string {
	out := make([]string, len(s.keywords))
	copy(out, s.keywords)
	return out
}

// Detect scans text for crisis keywords.
func (s *Scanner) Detect(ctx context.Context, text string) Signal {
	_, span := crisisTracer.Start(ctx, "crisis.detect")
	defer span.End()

	sig := scanWith(s.keywords, text)
	span.SetAttributes(attribute.Bool("crisis.triggered", sig.Triggered))
	if !sig.Triggered {
		return sig
	}

	span.SetAttributes(attribute.String("crisis.keyword", sig.MatchedKeyword))
	s.logger.Warn("crisis keyword detected", "keyword", sig.MatchedKeyword)
	return sig
}
