package memory

import (
	"context"
	"sync"

	id "vouch/pkg/domain"
	audit "vouch/pkg/platform/audit"
)

// InMemoryStore keeps the event stream in process. It is the system of record
// for the ordered log; external sinks only fan the stream out.
type InMemoryStore struct {
	mu     sync.RWMutex
	log    []audit.Event
	byOwnr map[id.Principal][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byOwnr: make(map[id.Principal][]int)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, event)
	s.byOwnr[event.Principal] = append(s.byOwnr[event.Principal], len(s.log)-1)
	return nil
}

func (s *InMemoryStore) ListByPrincipal(_ context.Context, principal id.Principal) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	indexes := s.byOwnr[principal]
	events := make([]audit.Event, 0, len(indexes))
	for _, i := range indexes {
		events = append(events, s.log[i])
	}
	return events, nil
}

// ListAll returns every event in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.log...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
	s.byOwnr = make(map[id.Principal][]int)
}
