package mood

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellnessbuddy/wellness-platform/internal/tenancy"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

type stubArchiver struct {
	userID  string
	entries []Entry
	err     error
}

func (s *stubArchiver) ArchiveMoods(_ context.Context, userID string, entries []Entry) (string, error) {
	s.userID = userID
	s.entries = entries
	if s.err != nil {
		return "", s.err
	}
	return "moods/v1/" + userID + "/x.json", nil
}

type countingRecorder struct{ sources []string }

func (c *countingRecorder) ObserveMoodEntry(source string) { c.sources = append(c.sources, source) }

type failingRepository struct{}

func (failingRepository) Create(context.Context, string, *CreateRequest) (*Entry, error) {
	return nil, errors.New("boom")
}

func (failingRepository) List(context.Context, string) ([]Entry, error) {
	return nil, errors.New("boom")
}

func newTestHandler(repo Repository, archiver Archiver, rec Recorder) *Handler {
	return NewHandler(HandlerConfig{
		Repo:     repo,
		Archiver: archiver,
		Metrics:  rec,
		Samples:  NewSampleGenerator(3),
		Logger:   logging.Discard(),
		Now:      func() time.Time { return refToday },
	})
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestCreateMood_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	recorder := &countingRecorder{}
	h := newTestHandler(repo, nil, recorder)

	body, _ := json.Marshal(CreateRequest{Score: 4, Category: "Happy"})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req = req.WithContext(tenancy.WithUserID(req.Context(), "u1"))
	rec := serve(h, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var entry Entry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entry))
	assert.Equal(t, 4, entry.Score)
	assert.Equal(t, []string{"api"}, recorder.sources)

	stored, _ := repo.List(context.Background(), "u1")
	assert.Len(t, stored, 1)
}

func TestCreateMood_Invalid(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository(), nil, nil)

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"score":9,"category":"Happy"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMood_RepositoryError(t *testing.T) {
	h := newTestHandler(failingRepository{}, nil, nil)
	rec := serve(h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"score":3,"category":"Calm"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListMoods_EmptyIsArray(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository(), nil, nil)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestInsights_AggregatesUserHistory(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	_, _ = repo.Create(ctx, tenancy.DemoUserID, &CreateRequest{Score: 2, Category: "Sad", Date: "2024-01-01"})
	_, _ = repo.Create(ctx, tenancy.DemoUserID, &CreateRequest{Score: 4, Category: "Happy", Date: "2024-01-02"})
	h := newTestHandler(repo, nil, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/insights?range=all", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp InsightsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, RangeAll, resp.Range)
	assert.Equal(t, Stats{Average: 3, Max: 4, Min: 2, Count: 2}, resp.Stats)
	assert.False(t, resp.Sample)
}

func TestInsights_SampleFallback(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository(), nil, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/insights?range=month&sample=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp InsightsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Sample)
	assert.Equal(t, 30, resp.Stats.Count)
}

func TestSample_Parameters(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository(), nil, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/sample?days=5&seed=11", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []Entry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
	assert.Len(t, entries, 5)
	assert.Equal(t, FormatDate(refToday), entries[4].Date)

	assert.Equal(t, http.StatusBadRequest, serve(h, httptest.NewRequest(http.MethodGet, "/sample?days=-1", nil)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, httptest.NewRequest(http.MethodGet, "/sample?seed=abc", nil)).Code)
}

func TestExport(t *testing.T) {
	repo := NewInMemoryRepository()
	_, _ = repo.Create(context.Background(), tenancy.DemoUserID, &CreateRequest{Score: 3, Category: "Calm"})

	archiver := &stubArchiver{}
	rec := serve(newTestHandler(repo, archiver, nil), httptest.NewRequest(http.MethodPost, "/export", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, tenancy.DemoUserID, archiver.userID)
	assert.Len(t, archiver.entries, 1)

	rec = serve(newTestHandler(repo, nil, nil), httptest.NewRequest(http.MethodPost, "/export", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(newTestHandler(repo, &stubArchiver{err: errors.New("s3 down")}, nil), httptest.NewRequest(http.MethodPost, "/export", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
