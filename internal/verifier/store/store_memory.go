package store

import (
	"context"
	"sync"

	id "vouch/pkg/domain"
)

// InMemory tracks which principals are authorized to act as verifiers. The
// value is a boolean rather than set membership so a future revocation can
// flip it without a schema change.
type InMemory struct {
	mu        sync.RWMutex
	verifiers map[id.Principal]bool
}

func NewInMemory() *InMemory {
	return &InMemory{verifiers: make(map[id.Principal]bool)}
}

// Set records the authorization state for a verifier. Idempotent.
func (s *InMemory) Set(_ context.Context, verifier id.Principal, authorized bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifiers[verifier] = authorized
	return nil
}

// IsAuthorized reports whether the principal is currently an authorized
// verifier. Unknown principals are not authorized.
func (s *InMemory) IsAuthorized(_ context.Context, verifier id.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verifiers[verifier], nil
}
