package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with TTL eviction on read.
// It backs tests and single-node dev setups without redis.
type MemoryStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]memoryEntry
}

type memoryEntry struct {
	sess Session
	exp  time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &MemoryStore{
		ttl: ttl,
		m:   make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Create(_ context.Context, accountID, role string) (Session, error) {
	token := uuid.NewString()
	now := time.Now()

	sess := Session{
		Token:     token,
		ID:        token,
		AccountID: accountID,
		Role:      role,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.m[token] = memoryEntry{sess: sess, exp: sess.ExpiresAt}
	s.mu.Unlock()

	return sess, nil
}

func (s *MemoryStore) Verify(_ context.Context, token string) (Session, error) {
	now := time.Now()

	s.mu.RLock()
	e, ok := s.m[token]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrNotFound
	}

	if now.After(e.exp) {
		s.mu.Lock()
		delete(s.m, token)
		s.mu.Unlock()
		return Session{}, ErrNotFound
	}

	return e.sess, nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.m, token)
	s.mu.Unlock()

	return nil
}
