package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wellnessbuddy/wellness-platform/internal/mood"
	_ "modernc.org/sqlite"
)

// ErrNotCached is returned when a setting has never been stored locally.
var ErrNotCached = errors.New("client: value not cached")

const (
	settingEmergencyEmail = "emergency_email"
	settingQuote          = "quote"
)

// Cache is the local store the client falls back to when the API is unreachable.
type Cache interface {
	SaveMood(ctx context.Context, entry mood.Entry) error
	Moods(ctx context.Context) ([]mood.Entry, error)
	SetEmergencyEmail(ctx context.Context, email string) error
	EmergencyEmail(ctx context.Context) (string, error)
	SetQuote(ctx context.Context, quote string) error
	Quote(ctx context.Context) (string, error)
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS moods (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	date     TEXT    NOT NULL,
	score    INTEGER NOT NULL,
	category TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLiteCache keeps offline data in a local SQLite file.
type SQLiteCache struct {
	db *sql.DB
}

// OpenSQLiteCache opens (or creates) the cache at path. ":memory:" keeps it in RAM.
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("client: create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("client: open cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	cache, err := NewSQLiteCache(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// NewSQLiteCache wraps an open database and ensures the schema exists.
func NewSQLiteCache(db *sql.DB) (*SQLiteCache, error) {
	if _, err := db.Exec(cacheSchema); err != nil {
		return nil, fmt.Errorf("client: init cache schema: %w", err)
	}
	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

func (c *SQLiteCache) SaveMood(ctx context.Context, entry mood.Entry) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO moods (date, score, category) VALUES (?, ?, ?)`,
		entry.Date, entry.Score, entry.Category)
	if err != nil {
		return fmt.Errorf("client: save mood: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Moods(ctx context.Context) ([]mood.Entry, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT date, score, category FROM moods ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("client: load moods: %w", err)
	}
	defer rows.Close()

	var out []mood.Entry
	for rows.Next() {
		var e mood.Entry
		if err := rows.Scan(&e.Date, &e.Score, &e.Category); err != nil {
			return nil, fmt.Errorf("client: scan mood: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (c *SQLiteCache) SetEmergencyEmail(ctx context.Context, email string) error {
	return c.set(ctx, settingEmergencyEmail, email)
}

func (c *SQLiteCache) EmergencyEmail(ctx context.Context) (string, error) {
	return c.get(ctx, settingEmergencyEmail)
}

func (c *SQLiteCache) SetQuote(ctx context.Context, quote string) error {
	return c.set(ctx, settingQuote, quote)
}

func (c *SQLiteCache) Quote(ctx context.Context) (string, error) {
	return c.get(ctx, settingQuote)
}

func (c *SQLiteCache) set(ctx context.Context, key, value string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("client: store %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) get(ctx context.Context, key string) (string, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotCached
	}
	if err != nil {
		return "", fmt.Errorf("client: load %s: %w", key, err)
	}
	return value, nil
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu       sync.RWMutex
	moods    []mood.Entry
	settings map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{settings: make(map[string]string)}
}

func (c *MemoryCache) SaveMood(_ context.Context, entry mood.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moods = append(c.moods, entry)
	return nil
}

func (c *MemoryCache) Moods(_ context.Context) ([]mood.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]mood.Entry, len(c.moods))
	copy(out, c.moods)
	return out, nil
}

func (c *MemoryCache) SetEmergencyEmail(_ context.Context, email string) error {
	return c.set(settingEmergencyEmail, email)
}

func (c *MemoryCache) EmergencyEmail(_ context.Context) (string, error) {
	return c.get(settingEmergencyEmail)
}

func (c *MemoryCache) SetQuote(_ context.Context, quote string) error {
	return c.set(settingQuote, quote)
}

func (c *MemoryCache) Quote(_ context.Context) (string, error) {
	return c.get(settingQuote)
}

func (c *MemoryCache) set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings[key] = value
	return nil
}

func (c *MemoryCache) get(key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.settings[key]
	if !ok {
		return "", ErrNotCached
	}
	return value, nil
}
