// Package registry is the authoritative aggregate for the identity registry.
// Every public operation enters here: the service checks caller authorization,
// mutates the stores, and appends the audit entry, all under one writer lock
// so each operation is atomic and the audit log carries the same total order
// as the mutations it records.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	identitymodels "vouch/internal/identity/models"
	"vouch/internal/platform/metrics"
	verificationmodels "vouch/internal/verification/models"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	audit "vouch/pkg/platform/audit"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_registry.go -package=mocks

type IdentityStore interface {
	Create(ctx context.Context, identity *identitymodels.Identity) error
	FindByOwner(ctx context.Context, owner id.Principal) (*identitymodels.Identity, error)
	Save(ctx context.Context, identity *identitymodels.Identity) error
	Count(ctx context.Context) (int, error)
}

type VerifierStore interface {
	Set(ctx context.Context, verifier id.Principal, authorized bool) error
	IsAuthorized(ctx context.Context, verifier id.Principal) (bool, error)
}

type RequestStore interface {
	Create(ctx context.Context, request *verificationmodels.VerificationRequest) (id.RequestID, error)
	FindByID(ctx context.Context, requestID id.RequestID) (*verificationmodels.VerificationRequest, error)
	Save(ctx context.Context, request *verificationmodels.VerificationRequest) error
	NextID(ctx context.Context) (id.RequestID, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
	List(ctx context.Context, principal id.Principal) ([]audit.Event, error)
	ListAll(ctx context.Context) ([]audit.Event, error)
}

// Service orchestrates the four stores and the audit log.
//
// Concurrency: mu serializes every mutating operation (single-writer model).
// Each mutator validates all preconditions before touching any store, so a
// reported failure never leaves partial state; the audit append happens
// inside the same critical section, so the log order equals the mutation
// order. Reads take store-level snapshots and never block behind the writer.
type Service struct {
	owner      id.Principal
	identities IdentityStore
	verifiers  VerifierStore
	requests   RequestStore
	audit      AuditPublisher

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	mu sync.Mutex
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. The owner principal is the only caller allowed to
// authorize verifiers.
func New(owner id.Principal, identities IdentityStore, verifiers VerifierStore, requests RequestStore, auditPublisher AuditPublisher, opts ...Option) *Service {
	s := &Service{
		owner:      owner,
		identities: identities,
		verifiers:  verifiers,
		requests:   requests,
		audit:      auditPublisher,
		logger:     slog.Default(),
		tracer:     otel.Tracer("vouch/registry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIdentity registers the caller's identity. A principal gets at most
// one identity ever; the "no identity" → "has identity" transition is
// permanent.
func (s *Service) CreateIdentity(ctx context.Context, name, email, profileHash string) (*identitymodels.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "registry.CreateIdentity")
	defer span.End()

	caller, now, err := s.callContext(ctx)
	if err != nil {
		return nil, err
	}

	identity, err := identitymodels.NewIdentity(caller, name, email, profileHash, now)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeAlreadyExists, "identity already exists for principal")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create identity")
	}

	s.emit(ctx, audit.Event{
		Seq:       now,
		Principal: caller,
		Action:    string(audit.EventIdentityCreated),
	})
	s.incrementIdentitiesCreated()

	return identity.Clone(), nil
}

// UpdateIdentity overwrites the caller's name, email, and profile hash. The
// verified flag and attributes are untouched.
func (s *Service) UpdateIdentity(ctx context.Context, name, email, profileHash string) error {
	ctx, span := s.tracer.Start(ctx, "registry.UpdateIdentity")
	defer span.End()

	caller, now, err := s.callContext(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	identity, err := s.findIdentity(ctx, caller)
	if err != nil {
		return err
	}
	if err := identity.ApplyProfile(name, email, profileHash, now); err != nil {
		return err
	}
	if err := s.identities.Save(ctx, identity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update identity")
	}

	s.emit(ctx, audit.Event{
		Seq:       now,
		Principal: caller,
		Action:    string(audit.EventIdentityUpdated),
	})
	return nil
}

// AddAttribute upserts one attribute on the caller's identity. New keys join
// the end of the insertion order; existing keys keep their slot and take the
// new value.
func (s *Service) AddAttribute(ctx context.Context, key, value string) error {
	ctx, span := s.tracer.Start(ctx, "registry.AddAttribute")
	defer span.End()

	caller, now, err := s.callContext(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	identity, err := s.findIdentity(ctx, caller)
	if err != nil {
		return err
	}
	if err := identity.ApplyAttribute(key, value, now); err != nil {
		return err
	}
	if err := s.identities.Save(ctx, identity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save attribute")
	}

	s.emit(ctx, audit.Event{
		Seq:       now,
		Principal: caller,
		Action:    string(audit.EventAttributeAdded),
		Subject:   key,
	})
	s.incrementAttributesAdded()
	return nil
}

// AuthorizeVerifier grants verifier status. Owner only; idempotent:
// re-authorizing is a no-op success and records no transition.
func (s *Service) AuthorizeVerifier(ctx context.Context, verifier id.Principal) error {
	ctx, span := s.tracer.Start(ctx, "registry.AuthorizeVerifier")
	defer span.End()

	caller, now, err := s.callContext(ctx)
	if err != nil {
		return err
	}
	if caller != s.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "only the registry owner may authorize verifiers")
	}
	if verifier.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "verifier cannot be the null principal")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	authorized, err := s.verifiers.IsAuthorized(ctx, verifier)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verifier")
	}
	if authorized {
		return nil
	}
	if err := s.verifiers.Set(ctx, verifier, true); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to authorize verifier")
	}

	s.emit(ctx, audit.Event{
		Seq:       now,
		Principal: caller,
		Action:    string(audit.EventVerifierAuthorized),
		Subject:   verifier.String(),
	})
	s.incrementVerifiersAuthorized()
	return nil
}

// RequestVerification opens a verification request from the caller to an
// authorized verifier. Multiple outstanding requests per requester are
// permitted.
func (s *Service) RequestVerification(ctx context.Context, verifier id.Principal, documentHash string) (id.RequestID, error) {
	ctx, span := s.tracer.Start(ctx, "registry.RequestVerification")
	defer span.End()

	caller, now, err := s.callContext(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findIdentity(ctx, caller); err != nil {
		return 0, err
	}

	authorized, err := s.verifiers.IsAuthorized(ctx, verifier)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verifier")
	}
	if !authorized {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "verifier is not authorized")
	}

	request, err := verificationmodels.NewVerificationRequest(caller, verifier, documentHash, now)
	if err != nil {
		return 0, err
	}

	requestID, err := s.requests.Create(ctx, request)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create verification request")
	}

	s.emit(ctx, audit.Event{
		Seq:       now,
		Principal: caller,
		Action:    string(audit.EventVerificationRequested),
		Subject:   verifier.String(),
	})
	s.incrementVerificationsRequested()
	return requestID, nil
}

// ProcessVerification records the assigned verifier's decision, exactly once
// per request. Approval is the single place that flips the requester's
// identity to verified, and nothing ever flips it back.
func (s *Service) ProcessVerification(ctx context.Context, requestID id.RequestID, approved bool) error {
	ctx, span := s.tracer.Start(ctx, "registry.ProcessVerification")
	defer span.End()

	caller, now, err := s.callContext(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "verification request not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification request")
	}

	authorized, err := s.verifiers.IsAuthorized(ctx, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verifier")
	}
	if !authorized || caller != request.Verifier {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the assigned verifier for this request")
	}
	if err := request.CanProcess(); err != nil {
		return err
	}

	// All preconditions hold; load the identity before mutating anything so
	// an approval either applies fully or not at all.
	var identity *identitymodels.Identity
	if approved {
		identity, err = s.findIdentity(ctx, request.Requester)
		if err != nil {
			return err
		}
	}

	request.ApplyDecision(approved)
	if err := s.requests.Save(ctx, request); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification request")
	}

	action := audit.EventVerificationRejected
	decision := "rejected"
	if approved {
		identity.MarkVerified(now)
		if err := s.identities.Save(ctx, identity); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark identity verified")
		}
		action = audit.EventIdentityVerified
		decision = "approved"
	}

	s.emit(ctx, audit.Event{
		Seq:       now,
		Principal: request.Requester,
		Action:    string(action),
		Subject:   caller.String(),
		Decision:  decision,
	})
	s.incrementVerificationsProcessed(approved)
	return nil
}

// GetIdentity returns a snapshot of a principal's identity.
func (s *Service) GetIdentity(ctx context.Context, principal id.Principal) (*identitymodels.Identity, error) {
	return s.findIdentity(ctx, principal)
}

// GetAttribute returns the attribute value for a principal, or the empty
// string when the principal or the key is absent. Lookups mirror "missing
// value" rather than failing.
func (s *Service) GetAttribute(ctx context.Context, principal id.Principal, key string) (string, error) {
	identity, err := s.identities.FindByOwner(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return identity.Attributes.Get(key), nil
}

// GetAttributeKeys returns a principal's attribute keys in first-insertion
// order. An unknown principal has no keys.
func (s *Service) GetAttributeKeys(ctx context.Context, principal id.Principal) ([]string, error) {
	identity, err := s.identities.FindByOwner(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return []string{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return identity.Attributes.Keys(), nil
}

// GetVerificationRequest returns a snapshot of a request record.
func (s *Service) GetVerificationRequest(ctx context.Context, requestID id.RequestID) (*verificationmodels.VerificationRequest, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verification request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification request")
	}
	return request, nil
}

// IsAuthorizedVerifier reports whether a principal may process requests.
func (s *Service) IsAuthorizedVerifier(ctx context.Context, principal id.Principal) (bool, error) {
	authorized, err := s.verifiers.IsAuthorized(ctx, principal)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verifier")
	}
	return authorized, nil
}

// Stats reports the registry's global counters.
type Stats struct {
	TotalIdentities int
	NextRequestID   id.RequestID
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	total, err := s.identities.Count(ctx)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count identities")
	}
	next, err := s.requests.NextID(ctx)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read request sequence")
	}
	return Stats{TotalIdentities: total, NextRequestID: next}, nil
}

// AuditTrail returns the audit entries recorded for one principal, in append
// order.
func (s *Service) AuditTrail(ctx context.Context, principal id.Principal) ([]audit.Event, error) {
	return s.audit.List(ctx, principal)
}

// callContext pulls the injected caller principal and logical tick. Every
// mutating operation requires both.
func (s *Service) callContext(ctx context.Context) (id.Principal, id.LogicalTime, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return "", 0, dErrors.New(dErrors.CodeUnauthorized, "caller principal missing from context")
	}
	return caller, requestcontext.Tick(ctx), nil
}

// findIdentity loads a snapshot and translates the store sentinel.
func (s *Service) findIdentity(ctx context.Context, owner id.Principal) (*identitymodels.Identity, error) {
	identity, err := s.identities.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return identity, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		// The in-process log cannot fail; a failure here is an external
		// sink misbehaving and must not fail the recorded mutation.
		s.logger.ErrorContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}

func (s *Service) incrementIdentitiesCreated() {
	if s.metrics != nil {
		s.metrics.IncrementIdentitiesCreated()
	}
}

func (s *Service) incrementAttributesAdded() {
	if s.metrics != nil {
		s.metrics.IncrementAttributesAdded()
	}
}

func (s *Service) incrementVerifiersAuthorized() {
	if s.metrics != nil {
		s.metrics.IncrementVerifiersAuthorized()
	}
}

func (s *Service) incrementVerificationsRequested() {
	if s.metrics != nil {
		s.metrics.IncrementVerificationsRequested()
	}
}

func (s *Service) incrementVerificationsProcessed(approved bool) {
	if s.metrics != nil {
		s.metrics.IncrementVerificationsProcessed(approved)
	}
}
