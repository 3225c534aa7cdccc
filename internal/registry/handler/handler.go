// Package handler exposes the registry service over HTTP. Handlers decode and
// validate the request, delegate to the service, and translate domain errors
// into protocol responses; no business rules live here.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	identitymodels "vouch/internal/identity/models"
	"vouch/internal/registry"
	verificationmodels "vouch/internal/verification/models"
	id "vouch/pkg/domain"
	audit "vouch/pkg/platform/audit"
	"vouch/pkg/platform/httputil"
	"vouch/pkg/requestcontext"
)

// Service defines the registry operations the transport needs.
type Service interface {
	CreateIdentity(ctx context.Context, name, email, profileHash string) (*identitymodels.Identity, error)
	UpdateIdentity(ctx context.Context, name, email, profileHash string) error
	AddAttribute(ctx context.Context, key, value string) error
	AuthorizeVerifier(ctx context.Context, verifier id.Principal) error
	RequestVerification(ctx context.Context, verifier id.Principal, documentHash string) (id.RequestID, error)
	ProcessVerification(ctx context.Context, requestID id.RequestID, approved bool) error
	GetIdentity(ctx context.Context, principal id.Principal) (*identitymodels.Identity, error)
	GetAttribute(ctx context.Context, principal id.Principal, key string) (string, error)
	GetAttributeKeys(ctx context.Context, principal id.Principal) ([]string, error)
	GetVerificationRequest(ctx context.Context, requestID id.RequestID) (*verificationmodels.VerificationRequest, error)
	IsAuthorizedVerifier(ctx context.Context, principal id.Principal) (bool, error)
	Stats(ctx context.Context) (registry.Stats, error)
	AuditTrail(ctx context.Context, principal id.Principal) ([]audit.Event, error)
}

// Handler wires registry endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts all registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	h.RegisterMutations(r)
	h.RegisterQueries(r)
}

// RegisterMutations mounts the state-changing endpoints. These need an
// authenticated caller and a logical tick, so the router guards them with the
// auth and clock middleware.
func (h *Handler) RegisterMutations(r chi.Router) {
	r.Post("/identity", h.HandleCreateIdentity)
	r.Put("/identity", h.HandleUpdateIdentity)
	r.Post("/identity/attributes", h.HandleAddAttribute)
	r.Post("/verifiers", h.HandleAuthorizeVerifier)
	r.Post("/verifications", h.HandleRequestVerification)
	r.Post("/verifications/{id}/decision", h.HandleDecision)
}

// RegisterQueries mounts the read-only endpoints. Reads are public views of
// registry state and never consume a tick.
func (h *Handler) RegisterQueries(r chi.Router) {
	r.Get("/identity/{principal}", h.HandleGetIdentity)
	r.Get("/identity/{principal}/attributes", h.HandleGetAttributeKeys)
	r.Get("/identity/{principal}/attributes/{key}", h.HandleGetAttribute)
	r.Get("/verifiers/{principal}", h.HandleGetVerifier)
	r.Get("/verifications/{id}", h.HandleGetVerification)
	r.Get("/audit/{principal}", h.HandleAuditTrail)
	r.Get("/stats", h.HandleStats)
}

// HandleCreateIdentity handles POST /identity.
func (h *Handler) HandleCreateIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CreateIdentityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	identity, err := h.service.CreateIdentity(ctx, req.Name, req.Email, req.ProfileHash)
	if err != nil {
		h.logger.WarnContext(ctx, "identity creation failed",
			"request_id", requestID,
			"caller", requestcontext.Caller(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "identity created",
		"request_id", requestID,
		"owner", identity.Owner,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromIdentity(identity))
}

// HandleUpdateIdentity handles PUT /identity.
func (h *Handler) HandleUpdateIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateIdentityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.UpdateIdentity(ctx, req.Name, req.Email, req.ProfileHash); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "identity updated",
		"request_id", requestID,
		"caller", requestcontext.Caller(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddAttribute handles POST /identity/attributes.
func (h *Handler) HandleAddAttribute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddAttributeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AddAttribute(ctx, req.Key, req.Value); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "attribute added",
		"request_id", requestID,
		"caller", requestcontext.Caller(ctx),
		"key", req.Key,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetIdentity handles GET /identity/{principal}.
func (h *Handler) HandleGetIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	identity, err := h.service.GetIdentity(ctx, principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromIdentity(identity))
}

// HandleGetAttributeKeys handles GET /identity/{principal}/attributes.
func (h *Handler) HandleGetAttributeKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	keys, err := h.service.GetAttributeKeys(ctx, principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AttributeKeysResponse{Keys: keys})
}

// HandleGetAttribute handles GET /identity/{principal}/attributes/{key}.
// Missing principals and keys read as the empty value, mirroring a mapping
// lookup rather than failing.
func (h *Handler) HandleGetAttribute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	key := chi.URLParam(r, "key")

	value, err := h.service.GetAttribute(ctx, principal, key)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AttributeValueResponse{Key: key, Value: value})
}

// HandleAuthorizeVerifier handles POST /verifiers.
func (h *Handler) HandleAuthorizeVerifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AuthorizeVerifierRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AuthorizeVerifier(ctx, req.ParsedVerifier()); err != nil {
		h.logger.WarnContext(ctx, "verifier authorization failed",
			"request_id", requestID,
			"caller", requestcontext.Caller(ctx),
			"verifier", req.Verifier,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verifier authorized",
		"request_id", requestID,
		"verifier", req.Verifier,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetVerifier handles GET /verifiers/{principal}.
func (h *Handler) HandleGetVerifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	authorized, err := h.service.IsAuthorizedVerifier(ctx, principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"authorized": authorized})
}

// HandleRequestVerification handles POST /verifications.
func (h *Handler) HandleRequestVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RequestVerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	allocated, err := h.service.RequestVerification(ctx, req.ParsedVerifier(), req.DocumentHash)
	if err != nil {
		h.logger.WarnContext(ctx, "verification request failed",
			"request_id", requestID,
			"caller", requestcontext.Caller(ctx),
			"verifier", req.Verifier,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification requested",
		"request_id", requestID,
		"verification_id", allocated,
	)
	httputil.WriteJSON(w, http.StatusCreated, RequestVerificationResponse{RequestID: uint64(allocated)})
}

// HandleGetVerification handles GET /verifications/{id}.
func (h *Handler) HandleGetVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	verificationID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	request, err := h.service.GetVerificationRequest(ctx, verificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromVerification(request))
}

// HandleDecision handles POST /verifications/{id}/decision.
func (h *Handler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	verificationID, err := id.ParseRequestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[DecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.ProcessVerification(ctx, verificationID, *req.Approved); err != nil {
		h.logger.WarnContext(ctx, "verification decision failed",
			"request_id", requestID,
			"caller", requestcontext.Caller(ctx),
			"verification_id", verificationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification processed",
		"request_id", requestID,
		"verification_id", verificationID,
		"approved", *req.Approved,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAuditTrail handles GET /audit/{principal}.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.AuditTrail(ctx, principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAuditTrail(events))
}

// HandleStats handles GET /stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromStats(stats))
}
