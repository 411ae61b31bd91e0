package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	historyTTL = 30 * 24 * time.Hour
	// historyCap bounds the stored messages per user.
	historyCap = 200
)

// HistoryStore persists a user's chat messages in order.
type HistoryStore interface {
	Append(ctx context.Context, userID string, msgs ...Message) error
	// Load returns up to limit most recent messages, oldest first. limit <= 0 means all.
	Load(ctx context.Context, userID string, limit int) ([]Message, error)
}

// RedisHistoryStore keeps each user's history in a capped Redis list.
type RedisHistoryStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func NewRedisHistoryStore(client *redis.Client, tracer trace.Tracer) *RedisHistoryStore {
	if client == nil {
		panic("chat: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("wellness.internal.chat.history")
	}
	return &RedisHistoryStore{redis: client, tracer: tracer}
}

func (s *RedisHistoryStore) Append(ctx context.Context, userID string, msgs ...Message) error {
	ctx, span := s.tracer.Start(ctx, "chat.append_history")
	defer span.End()

	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("chat: failed to marshal message: %w", err)
		}
		values = append(values, data)
	}

	key := historyKey(userID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -historyCap, -1)
	pipe.Expire(ctx, key, historyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: failed to persist history: %w", err)
	}
	return nil
}

func (s *RedisHistoryStore) Load(ctx context.Context, userID string, limit int) ([]Message, error) {
	ctx, span := s.tracer.Start(ctx, "chat.load_history")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	raw, err := s.redis.LRange(ctx, historyKey(userID), start, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: failed to load history: %w", err)
	}

	history := make([]Message, 0, len(raw))
	for _, item := range raw {
		var m Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("chat: failed to decode history: %w", err)
		}
		history = append(history, m)
	}
	return history, nil
}

func historyKey(userID string) string {
	return fmt.Sprintf("chat_history:%s", userID)
}

// InMemoryHistoryStore is a HistoryStore for tests and single-process runs.
type InMemoryHistoryStore struct {
	mu      sync.RWMutex
	history map[string][]Message
}

func NewInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{history: make(map[string][]Message)}
}

func (s *InMemoryHistoryStore) Append(_ context.Context, userID string, msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := append(s.history[userID], msgs...)
	if len(h) > historyCap {
		h = h[len(h)-historyCap:]
	}
	s.history[userID] = h
	return nil
}

func (s *InMemoryHistoryStore) Load(_ context.Context, userID string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.history[userID]
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	out := make([]Message, len(h))
	copy(out, h)
	return out, nil
}
