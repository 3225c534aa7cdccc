package models

import (
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// VerificationRequest is the workflow aggregate for one third-party
// verification. States: Requested (initial) → Processed (terminal). There is
// no cancellation or expiry.
//
// Invariants:
//   - Processed transitions false→true exactly once.
//   - Approved is only meaningful once Processed is true, and is immutable
//     afterwards.
//   - Requests are never deleted.
type VerificationRequest struct {
	ID           id.RequestID
	Requester    id.Principal
	Verifier     id.Principal
	DocumentHash string
	Approved     bool
	Processed    bool
	RequestedAt  id.LogicalTime
}

func NewVerificationRequest(requester, verifier id.Principal, documentHash string, now id.LogicalTime) (*VerificationRequest, error) {
	if documentHash == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document hash cannot be empty")
	}
	if verifier.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "verifier cannot be empty")
	}
	return &VerificationRequest{
		Requester:    requester,
		Verifier:     verifier,
		DocumentHash: documentHash,
		RequestedAt:  now,
	}, nil
}

// CanProcess checks the exactly-once transition. Returns CodeAlreadyProcessed
// once the request reached its terminal state.
func (r *VerificationRequest) CanProcess() error {
	if r.Processed {
		return dErrors.New(dErrors.CodeAlreadyProcessed, "verification request already processed")
	}
	return nil
}

// ApplyDecision moves the request to its terminal state. Call CanProcess
// first to validate the transition.
func (r *VerificationRequest) ApplyDecision(approved bool) {
	r.Processed = true
	r.Approved = approved
}

// Clone returns an independent copy for snapshot reads.
func (r *VerificationRequest) Clone() *VerificationRequest {
	clone := *r
	return &clone
}
