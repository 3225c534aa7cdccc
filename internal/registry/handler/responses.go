package handler

import (
	identitymodels "vouch/internal/identity/models"
	"vouch/internal/registry"
	verificationmodels "vouch/internal/verification/models"
	audit "vouch/pkg/platform/audit"
)

// AttributeResponse is one attribute entry. Attributes are returned as an
// ordered list, not an object, because JSON objects do not preserve key order.
type AttributeResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// IdentityResponse is the wire shape for an identity record.
type IdentityResponse struct {
	Owner       string              `json:"owner"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	ProfileHash string              `json:"profile_hash"`
	Verified    bool                `json:"verified"`
	CreatedAt   uint64              `json:"created_at"`
	UpdatedAt   uint64              `json:"updated_at"`
	Attributes  []AttributeResponse `json:"attributes"`
}

// FromIdentity converts a domain identity into its wire shape.
func FromIdentity(identity *identitymodels.Identity) IdentityResponse {
	keys := identity.Attributes.Keys()
	attributes := make([]AttributeResponse, 0, len(keys))
	for _, key := range keys {
		attributes = append(attributes, AttributeResponse{Key: key, Value: identity.Attributes.Get(key)})
	}
	return IdentityResponse{
		Owner:       identity.Owner.String(),
		Name:        identity.Name,
		Email:       identity.Email,
		ProfileHash: identity.ProfileHash,
		Verified:    identity.Verified,
		CreatedAt:   uint64(identity.CreatedAt),
		UpdatedAt:   uint64(identity.UpdatedAt),
		Attributes:  attributes,
	}
}

// VerificationResponse is the wire shape for a verification request record.
type VerificationResponse struct {
	ID           uint64 `json:"id"`
	Requester    string `json:"requester"`
	Verifier     string `json:"verifier"`
	DocumentHash string `json:"document_hash"`
	Processed    bool   `json:"processed"`
	Approved     bool   `json:"approved"`
	RequestedAt  uint64 `json:"requested_at"`
}

// FromVerification converts a domain verification request into its wire shape.
func FromVerification(request *verificationmodels.VerificationRequest) VerificationResponse {
	return VerificationResponse{
		ID:           uint64(request.ID),
		Requester:    request.Requester.String(),
		Verifier:     request.Verifier.String(),
		DocumentHash: request.DocumentHash,
		Processed:    request.Processed,
		Approved:     request.Approved,
		RequestedAt:  uint64(request.RequestedAt),
	}
}

// RequestVerificationResponse carries the allocated request ID.
type RequestVerificationResponse struct {
	RequestID uint64 `json:"request_id"`
}

// AuditEventResponse is the wire shape for one audit log entry.
type AuditEventResponse struct {
	Seq       uint64 `json:"seq"`
	Principal string `json:"principal"`
	Action    string `json:"action"`
	Subject   string `json:"subject,omitempty"`
	Decision  string `json:"decision,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// FromAuditTrail converts audit events into their wire shape, preserving
// append order.
func FromAuditTrail(events []audit.Event) []AuditEventResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, AuditEventResponse{
			Seq:       uint64(event.Seq),
			Principal: event.Principal.String(),
			Action:    event.Action,
			Subject:   event.Subject,
			Decision:  event.Decision,
			RequestID: event.RequestID,
		})
	}
	return out
}

// AttributeValueResponse is the wire shape for a single attribute lookup.
type AttributeValueResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AttributeKeysResponse is the wire shape for an attribute key listing.
type AttributeKeysResponse struct {
	Keys []string `json:"keys"`
}

// StatsResponse is the wire shape for the registry counters.
type StatsResponse struct {
	TotalIdentities int    `json:"total_identities"`
	NextRequestID   uint64 `json:"next_request_id"`
}

// FromStats converts registry stats into their wire shape.
func FromStats(stats registry.Stats) StatsResponse {
	return StatsResponse{
		TotalIdentities: stats.TotalIdentities,
		NextRequestID:   uint64(stats.NextRequestID),
	}
}
