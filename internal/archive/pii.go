package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"github.com/wellnessbuddy/wellness-platform/internal/chat"
)

var redactions = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`[\w.%+\-]+@[\w\-]+(?:\.[\w\-]+)*\.[A-Za-z]{2,}`), "[EMAIL]"},
	{regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`), "[PHONE]"},
}

// HashUserID keys archive objects so raw user ids never appear in bucket paths.
func HashUserID(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// ScrubPII masks email addresses and North American phone numbers.
func ScrubPII(text string) string {
	for _, r := range redactions {
		text = r.pattern.ReplaceAllString(text, r.label)
	}
	return text
}

// ScrubMessages scrubs a copy; msgs is left untouched.
func ScrubMessages(msgs []chat.Message) []chat.Message {
	out := make([]chat.Message, 0, len(msgs))
	for _, m := range msgs {
		m.Content = ScrubPII(m.Content)
		out = append(out, m)
	}
	return out
}
