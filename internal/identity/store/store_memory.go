package store

import (
	"context"
	"sync"

	"vouch/internal/identity/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// InMemory keeps identity records in process. Writes go through the registry's
// single writer; the store's own lock only protects concurrent readers. Reads
// hand out deep copies so callers always observe a consistent snapshot.
type InMemory struct {
	mu         sync.RWMutex
	identities map[id.Principal]*models.Identity
}

func NewInMemory() *InMemory {
	return &InMemory{identities: make(map[id.Principal]*models.Identity)}
}

// Create stores a new identity. Returns sentinel.ErrConflict when the
// principal already has one; that transition is permanent, so the conflict
// can never clear.
func (s *InMemory) Create(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[identity.Owner]; ok {
		return sentinel.ErrConflict
	}
	s.identities[identity.Owner] = identity.Clone()
	return nil
}

// FindByOwner returns a snapshot of the principal's identity.
func (s *InMemory) FindByOwner(_ context.Context, owner id.Principal) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[owner]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return identity.Clone(), nil
}

// Save overwrites an existing identity record.
func (s *InMemory) Save(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[identity.Owner]; !ok {
		return sentinel.ErrNotFound
	}
	s.identities[identity.Owner] = identity.Clone()
	return nil
}

// Count returns the number of identities ever created.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities), nil
}
