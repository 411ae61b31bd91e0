// Package contacts stores each user's emergency contact email.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrContactNotFound is returned when a user has no emergency contact.
	ErrContactNotFound = errors.New("contacts: emergency contact not found")
	// ErrInvalidEmail is returned for malformed addresses.
	ErrInvalidEmail = errors.New("contacts: invalid email address")
)

// Store persists emergency contacts keyed by user id.
type Store interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, email string) error
}

// NormalizeEmail validates an address and returns its bare form.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	return strings.ToLower(addr.Address), nil
}

// RedisStore keeps contacts in a Redis hash.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

const contactsKey = "wellness:emergency_contacts"

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("contacts: redis client cannot be nil")
	}
	return &RedisStore{redis: client, tracer: otel.Tracer("wellness.internal.contacts")}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "contacts.get")
	defer span.End()

	email, err := s.redis.HGet(ctx, contactsKey, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrContactNotFound
		}
		span.RecordError(err)
		return "", fmt.Errorf("contacts: failed to load contact: %w", err)
	}
	return email, nil
}

func (s *RedisStore) Set(ctx context.Context, userID, email string) error {
	ctx, span := s.tracer.Start(ctx, "contacts.set")
	defer span.End()

	normalized, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	if err := s.redis.HSet(ctx, contactsKey, userID, normalized).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("contacts: failed to save contact: %w", err)
	}
	return nil
}

// InMemoryStore is a map-backed Store.
type InMemoryStore struct {
	mu       sync.RWMutex
	contacts map[string]string
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{contacts: make(map[string]string)}
}

func (s *InMemoryStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.contacts[userID]
	if !ok {
		return "", ErrContactNotFound
	}
	return email, nil
}

func (s *InMemoryStore) Set(_ context.Context, userID, email string) error {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.contacts[userID] = normalized
	s.mu.Unlock()
	return nil
}
