// Package archive exports mood histories and chat transcripts to S3.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/wellnessbuddy/wellness-platform/internal/chat"
	"github.com/wellnessbuddy/wellness-platform/internal/mood"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// Export kinds double as the top-level key prefix.
const (
	KindMoods = "moods"
	KindChat  = "chat"
)

var errDisabled = errors.New("archive: not configured")

// S3API is satisfied by *s3.Client.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Store struct {
	bucket string
	api    S3API
	logger *logging.Logger
	now    func() time.Time
}

// NewStore returns a Store; with no bucket or client every export is a no-op.
func NewStore(api S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: strings.TrimSpace(bucket), api: api, logger: logger, now: time.Now}
}

func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.api != nil
}

// ArchiveMoods stores entries with their all-time stats and returns the
// object key, or "" when archival is off.
func (s *Store) ArchiveMoods(ctx context.Context, userID string, entries []mood.Entry) (string, error) {
	return s.export(ctx, KindMoods, userID, len(entries), func(hash string, at time.Time) any {
		return MoodExport{
			Version:    recordVersion,
			UserHash:   hash,
			ArchivedAt: at,
			Count:      len(entries),
			Stats:      mood.Aggregate(entries, mood.RangeAll, at).Stats,
			Entries:    entries,
		}
	})
}

// ArchiveChat stores a PII-scrubbed transcript.
func (s *Store) ArchiveChat(ctx context.Context, userID string, msgs []chat.Message) (string, error) {
	return s.export(ctx, KindChat, userID, len(msgs), func(hash string, at time.Time) any {
		return ChatExport{
			Version:    recordVersion,
			UserHash:   hash,
			ArchivedAt: at,
			Count:      len(msgs),
			Messages:   ScrubMessages(msgs),
		}
	})
}

func (s *Store) export(ctx context.Context, kind, userID string, count int, record func(hash string, at time.Time) any) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	at := s.now().UTC()
	hash := HashUserID(userID)
	key := fmt.Sprintf("%s/v1/%s/%s/%s.json", kind, hash, at.Format("2006/01/02"), uuid.NewString())

	body, err := json.Marshal(record(hash, at))
	if err != nil {
		return "", fmt.Errorf("archive: marshal %s export: %w", kind, err)
	}
	if err := s.putObject(ctx, key, "application/json", body); err != nil {
		return "", err
	}
	s.logger.Info("export archived", "kind", kind, "s3_key", key, "count", count)

	entry := ManifestEntry{Kind: kind, UserHash: hash, S3Key: key, ArchivedAt: at.Format(time.RFC3339), Count: count}
	if err := s.AppendManifest(ctx, kind, entry); err != nil {
		// the export is stored; only the index lags
		s.logger.Warn("manifest append failed", "error", err, "s3_key", key)
	}
	return key, nil
}

// LoadMoods reads back an export written by ArchiveMoods.
func (s *Store) LoadMoods(ctx context.Context, key string) (*MoodExport, error) {
	if !s.Enabled() {
		return nil, errDisabled
	}
	body, err := s.getObject(ctx, key)
	if err != nil {
		return nil, err
	}
	var record MoodExport
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("archive: decode %s: %w", key, err)
	}
	return &record, nil
}

// AppendManifest adds entry as one JSONL line to kind's manifest for the
// current month. S3 cannot append, so the object is rewritten whole.
func (s *Store) AppendManifest(ctx context.Context, kind string, entry ManifestEntry) error {
	if !s.Enabled() {
		return nil
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}
	key := fmt.Sprintf("%s/v1/manifests/%s.jsonl", kind, s.now().UTC().Format("2006-01"))

	existing, err := s.getObject(ctx, key)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("archive: get manifest: %w", err)
	}
	if n := len(existing); n > 0 && existing[n-1] != '\n' {
		existing = append(existing, '\n')
	}
	existing = append(existing, line...)
	existing = append(existing, '\n')
	return s.putObject(ctx, key, "application/x-ndjson", existing)
}

func (s *Store) putObject(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put %s: %w", key, err)
	}
	return nil
}

func (s *Store) getObject(ctx context.Context, key string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("archive: s3 get %s: %w", key, err)
	}
	defer out.Body.Close()
	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", key, err)
	}
	return body, nil
}

func isNotFound(err error) bool {
	var noKey *s3types.NoSuchKey
	var notFound *s3types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return true
	}
	return strings.Contains(err.Error(), "NoSuchKey")
}
