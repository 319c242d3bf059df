package session

import (
	"sync"
	"time"
)

type memoryEntry struct {
	session   CheckoutSession
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.RWMutex
	entries map[uint]memoryEntry
}

// NewMemoryStore creates an in-process checkout session store. Used in tests
// and when Redis is not configured.
func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[uint]memoryEntry)}
}

func (s *memoryStore) Load(userID uint) (*CheckoutSession, error) {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, userID)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	session := entry.session
	return &session, nil
}

func (s *memoryStore) Save(userID uint, session *CheckoutSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[userID] = memoryEntry{
		session:   *session,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *memoryStore) Clear(userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, userID)
	return nil
}
