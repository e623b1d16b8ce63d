package account

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu        sync.RWMutex
	byEmail   map[string]Account
	emailByID map[string]string
}

// NewMemoryRepository builds an in-memory account store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{byEmail: make(map[string]Account), emailByID: make(map[string]string)}
}

func (r *memoryRepository) Create(_ context.Context, acct Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[acct.Email]; exists {
		return ErrEmailTaken
	}
	r.byEmail[acct.Email] = acct
	r.emailByID[acct.ID] = acct.Email
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.byEmail[email]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acct, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email, ok := r.emailByID[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return r.byEmail[email], nil
}

func (r *memoryRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email, ok := r.emailByID[id]
	if !ok {
		return ErrNotFound
	}
	acct := r.byEmail[email]
	acct.LastLogin = at
	r.byEmail[email] = acct
	return nil
}
