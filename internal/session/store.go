package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tiendazo/storefront-backend/pkg/redis"
)

// ErrNotFound is returned when a session field has no stored value.
var ErrNotFound = errors.New("session: field not found")

// Store persists per-session fields. The production implementation sits on
// redis; the memory implementation backs tests and local development without
// a redis instance.
type Store interface {
	GetField(ctx context.Context, sessionID, field string) (string, error)
	SetField(ctx context.Context, sessionID, field, value string, ttl time.Duration) error
	DeleteFields(ctx context.Context, sessionID string, fields ...string) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore builds a session store on the shared redis client.
func NewRedisStore(client *redis.Client) (Store, error) {
	if client == nil {
		return nil, errors.New("session: redis client is required")
	}
	return &redisStore{client: client}, nil
}

func (s *redisStore) GetField(ctx context.Context, sessionID, field string) (string, error) {
	value, err := s.client.Get(ctx, s.client.SessionKey(sessionID, field))
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return value, err
}

func (s *redisStore) SetField(ctx context.Context, sessionID, field, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.client.SessionKey(sessionID, field), value, ttl)
}

func (s *redisStore) DeleteFields(ctx context.Context, sessionID string, fields ...string) error {
	keys := make([]string, 0, len(fields))
	for _, field := range fields {
		keys = append(keys, s.client.SessionKey(sessionID, field))
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...)
}

type memoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore builds an in-process session store. TTLs are ignored.
func NewMemoryStore() Store {
	return &memoryStore{data: make(map[string]string)}
}

func (s *memoryStore) key(sessionID, field string) string {
	return sessionID + ":" + field
}

func (s *memoryStore) GetField(_ context.Context, sessionID, field string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[s.key(sessionID, field)]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *memoryStore) SetField(_ context.Context, sessionID, field, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[s.key(sessionID, field)] = value
	return nil
}

func (s *memoryStore) DeleteFields(_ context.Context, sessionID string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, field := range fields {
		delete(s.data, s.key(sessionID, field))
	}
	return nil
}
