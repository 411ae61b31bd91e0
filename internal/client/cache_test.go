package client

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellnessbuddy/wellness-platform/internal/mood"
)

func exerciseCache(t *testing.T, cache Cache) {
	t.Helper()
	ctx := context.Background()

	moods, err := cache.Moods(ctx)
	require.NoError(t, err)
	assert.Empty(t, moods)

	require.NoError(t, cache.SaveMood(ctx, mood.Entry{Date: "2026-05-01", Score: 2, Category: "Sad"}))
	require.NoError(t, cache.SaveMood(ctx, mood.Entry{Date: "2026-05-02", Score: 5, Category: "Happy"}))
	moods, err = cache.Moods(ctx)
	require.NoError(t, err)
	require.Len(t, moods, 2)
	assert.Equal(t, "2026-05-01", moods[0].Date)
	assert.Equal(t, 5, moods[1].Score)

	_, err = cache.EmergencyEmail(ctx)
	assert.ErrorIs(t, err, ErrNotCached)
	require.NoError(t, cache.SetEmergencyEmail(ctx, "mom@example.com"))
	require.NoError(t, cache.SetEmergencyEmail(ctx, "dad@example.com"))
	email, err := cache.EmergencyEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dad@example.com", email)

	require.NoError(t, cache.SetQuote(ctx, "Keep going."))
	q, err := cache.Quote(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Keep going.", q)
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache())
}

func TestSQLiteCache(t *testing.T) {
	cache, err := OpenSQLiteCache(filepath.Join(t.TempDir(), "offline", "moods.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	exerciseCache(t, cache)
}

func TestSQLiteCache_InMemory(t *testing.T) {
	cache, err := OpenSQLiteCache(":memory:")
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	exerciseCache(t, cache)
}

func TestSQLiteCache_WriteFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS moods").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO moods").
		WithArgs("2026-05-01", 3, "Calm").
		WillReturnError(errors.New("disk I/O error"))

	cache, err := NewSQLiteCache(db)
	require.NoError(t, err)

	err = cache.SaveMood(context.Background(), mood.Entry{Date: "2026-05-01", Score: 3, Category: "Calm"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSQLiteCache_SchemaFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("read-only database"))

	_, err = NewSQLiteCache(db)
	assert.Error(t, err)
}
