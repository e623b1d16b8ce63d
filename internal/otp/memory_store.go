package otp

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	cred      PendingCredential
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore builds an in-memory pending credential store for testing and
// Redis-less development runs.
func NewMemoryStore() Store {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock builds a memory store with an injectable clock so
// tests can step past the expiry window without sleeping.
func NewMemoryStoreWithClock(now func() time.Time) Store {
	return &memoryStore{entries: make(map[string]memoryEntry), now: now}
}

func (s *memoryStore) Put(_ context.Context, cred PendingCredential, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[cred.Email] = memoryEntry{cred: cred, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memoryStore) Get(_ context.Context, email string) (PendingCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[email]
	if !ok {
		return PendingCredential{}, ErrNoCredential
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, email)
		return PendingCredential{}, ErrNoCredential
	}
	return entry.cred, nil
}

func (s *memoryStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
	return nil
}
