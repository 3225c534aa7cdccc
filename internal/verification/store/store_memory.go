package store

import (
	"context"
	"sync"

	"vouch/internal/verification/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// InMemory stores verification requests and owns the request-id sequence.
// IDs start at 1, strictly increase, and are never reused; allocation happens
// inside the store lock so the counter and the record land together.
type InMemory struct {
	mu       sync.RWMutex
	nextID   id.RequestID
	requests map[id.RequestID]*models.VerificationRequest
}

func NewInMemory() *InMemory {
	return &InMemory{
		nextID:   1,
		requests: make(map[id.RequestID]*models.VerificationRequest),
	}
}

// Create assigns the next request ID and stores the request. The caller's
// struct is updated with the allocated ID.
func (s *InMemory) Create(_ context.Context, request *models.VerificationRequest) (id.RequestID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request.ID = s.nextID
	s.nextID++
	s.requests[request.ID] = request.Clone()
	return request.ID, nil
}

// FindByID returns a snapshot of the request.
func (s *InMemory) FindByID(_ context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return request.Clone(), nil
}

// Save overwrites an existing request record.
func (s *InMemory) Save(_ context.Context, request *models.VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[request.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.requests[request.ID] = request.Clone()
	return nil
}

// NextID returns the next request ID the store would allocate.
func (s *InMemory) NextID(_ context.Context) (id.RequestID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID, nil
}
