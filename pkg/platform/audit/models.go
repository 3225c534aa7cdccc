package audit

import (
	"context"

	id "vouch/pkg/domain"
)

// Event is appended for every accepted state transition. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Seq mirrors the logical timestamp of the mutation it records; because every
// mutation runs through the registry's single writer, appending in call order
// preserves the global total order.
type Event struct {
	Seq       id.LogicalTime
	Principal id.Principal
	Action    string
	// Subject identifies the secondary party of the transition when one
	// exists: the verifier for authorization and request events, the
	// attribute key for attribute events.
	Subject string
	// Decision records the outcome of a processed verification
	// ("approved" or "rejected"); empty for other events.
	Decision string
	// RequestID is the transport correlation ID, kept for tracing audit
	// entries back to the call that produced them.
	RequestID string
}

// AuditEvent names an accepted state transition.
type AuditEvent string

const (
	EventIdentityCreated       AuditEvent = "identity_created"
	EventIdentityUpdated       AuditEvent = "identity_updated"
	EventAttributeAdded        AuditEvent = "attribute_added"
	EventVerifierAuthorized    AuditEvent = "verifier_authorized"
	EventVerificationRequested AuditEvent = "verification_requested"
	EventIdentityVerified      AuditEvent = "identity_verified"
	EventVerificationRejected  AuditEvent = "verification_rejected"
)

// Store is an append-only event sink. Append must preserve call order.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByPrincipal(ctx context.Context, principal id.Principal) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
}
