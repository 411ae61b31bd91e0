package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellnessbuddy/wellness-platform/internal/chat"
	"github.com/wellnessbuddy/wellness-platform/internal/mood"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

type storedObject struct {
	bucket string
	key    string
	body   []byte
}

// fakeBucket keeps objects in memory and remembers every write in order.
type fakeBucket struct {
	writes  []storedObject
	objects map[string][]byte
	putErr  error
	getErr  error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func (f *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	obj := storedObject{bucket: aws.ToString(in.Bucket), key: aws.ToString(in.Key), body: body}
	f.writes = append(f.writes, obj)
	f.objects[obj.key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func newTestStore(api S3API) *Store {
	s := NewStore(api, "test-bucket", logging.Discard())
	s.now = func() time.Time { return time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC) }
	return s
}

func TestStore_ArchiveMoods(t *testing.T) {
	bucket := newFakeBucket()
	store := newTestStore(bucket)

	entries := []mood.Entry{
		{Date: "2024-01-08", Score: 2, Category: "Sad"},
		{Date: "2024-01-09", Score: 4, Category: "Happy"},
	}
	key, err := store.ArchiveMoods(context.Background(), "user-1", entries)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "moods/v1/"+HashUserID("user-1")+"/2024/01/10/"))
	assert.True(t, strings.HasSuffix(key, ".json"))
	require.Len(t, bucket.writes, 2)
	assert.Equal(t, "test-bucket", bucket.writes[0].bucket)

	var decoded MoodExport
	require.NoError(t, json.Unmarshal(bucket.writes[0].body, &decoded))
	assert.Equal(t, 2, decoded.Count)
	assert.InDelta(t, 3.0, decoded.Stats.Average, 1e-9)
	assert.NotContains(t, string(bucket.writes[0].body), "user-1")

	assert.Equal(t, "moods/v1/manifests/2024-01.jsonl", bucket.writes[1].key)
	var entry ManifestEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(bucket.writes[1].body), &entry))
	assert.Equal(t, key, entry.S3Key)

	loaded, err := store.LoadMoods(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, entries, loaded.Entries)
}

func TestStore_ArchiveChatScrubsPII(t *testing.T) {
	bucket := newFakeBucket()
	store := newTestStore(bucket)

	key, err := store.ArchiveChat(context.Background(), "user-1", []chat.Message{
		{Role: chat.RoleUser, Content: "email me at kid@example.com"},
		{Role: chat.RoleAssistant, Content: "Sure!"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "chat/v1/"))

	var decoded ChatExport
	require.NoError(t, json.Unmarshal(bucket.objects[key], &decoded))
	assert.Equal(t, "email me at [EMAIL]", decoded.Messages[0].Content)
}

func TestStore_Disabled(t *testing.T) {
	store := NewStore(nil, "", nil)
	assert.False(t, store.Enabled())

	key, err := store.ArchiveMoods(context.Background(), "u1", nil)
	assert.NoError(t, err)
	assert.Empty(t, key)

	_, err = store.LoadMoods(context.Background(), "k")
	assert.Error(t, err)
}

func TestStore_PutError(t *testing.T) {
	bucket := newFakeBucket()
	bucket.putErr = errors.New("access denied")
	_, err := newTestStore(bucket).ArchiveMoods(context.Background(), "u1", nil)
	assert.ErrorContains(t, err, "archive: s3 put")
}

func TestStore_ManifestAppend(t *testing.T) {
	bucket := newFakeBucket()
	store := newTestStore(bucket)

	require.NoError(t, store.AppendManifest(context.Background(), "moods", ManifestEntry{S3Key: "a"}))
	require.NoError(t, store.AppendManifest(context.Background(), "moods", ManifestEntry{S3Key: "b"}))

	lastPut := bucket.writes[len(bucket.writes)-1]
	lines := bytes.Split(bytes.TrimSpace(lastPut.body), []byte("\n"))
	assert.Len(t, lines, 2)
}

func TestStore_ManifestReadError(t *testing.T) {
	bucket := newFakeBucket()
	bucket.getErr = errors.New("throttled")
	err := newTestStore(bucket).AppendManifest(context.Background(), "moods", ManifestEntry{})
	assert.ErrorContains(t, err, "get manifest")
}
