package archive

import (
	"time"

	"github.com/wellnessbuddy/wellness-platform/internal/chat"
	"github.com/wellnessbuddy/wellness-platform/internal/mood"
)

const recordVersion = "1.0"

// MoodExport is the object written to S3 for a mood history export.
type MoodExport struct {
	Version    string       `json:"version"`
	UserHash   string       `json:"user_hash"` // sha256 of user id
	ArchivedAt time.Time    `json:"archived_at"`
	Count      int          `json:"count"`
	Stats      mood.Stats   `json:"stats"`
	Entries    []mood.Entry `json:"entries"`
}

// ChatExport is a PII-scrubbed chat transcript.
type ChatExport struct {
	Version    string         `json:"version"`
	UserHash   string         `json:"user_hash"`
	ArchivedAt time.Time      `json:"archived_at"`
	Count      int            `json:"count"`
	Messages   []chat.Message `json:"messages"`
}

// ManifestEntry is one JSONL line in the monthly manifest file.
type ManifestEntry struct {
	Kind       string `json:"kind"` // moods|chat
	UserHash   string `json:"user_hash"`
	S3Key      string `json:"s3_key"`
	ArchivedAt string `json:"archived_at"`
	Count      int    `json:"count"`
}
