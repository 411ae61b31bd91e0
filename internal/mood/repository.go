package mood

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for mood storage
type Repository interface {
	Create(ctx context.Context, userID string, req *CreateRequest) (*Entry, error)
	List(ctx context.Context, userID string) ([]Entry, error)
}

// InMemoryRepository keeps entries per user in process memory.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]Entry
	now     func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		entries: make(map[string][]Entry),
		now:     time.Now,
	}
}

// Create validates and stores an entry, dating it today when no date is given.
func (r *InMemoryRepository) Create(ctx context.Context, userID string, req *CreateRequest) (*Entry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry := Entry{
		ID:       uuid.New().String(),
		Date:     entryDate(req.Date, r.now()),
		Score:    req.Score,
		Category: req.Category,
	}

	r.mu.Lock()
	r.entries[userID] = append(r.entries[userID], entry)
	r.mu.Unlock()

	return &entry, nil
}

// List returns the user's entries in insertion order.
func (r *InMemoryRepository) List(ctx context.Context, userID string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries[userID]))
	copy(out, r.entries[userID])
	return out, nil
}

func entryDate(requested string, now time.Time) string {
	if day, ok := ParseDate(strings.TrimSpace(requested)); ok {
		return FormatDate(day)
	}
	return FormatDate(Day(now))
}
