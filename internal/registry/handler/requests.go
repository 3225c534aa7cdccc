package handler

import (
	"strings"

	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// CreateIdentityRequest is the HTTP request body for POST and PUT /identity.
type CreateIdentityRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	ProfileHash string `json:"profile_hash"`
}

// Validate trims and checks the required fields. The profile hash may be
// empty; content validation is out of scope for the registry.
func (r *CreateIdentityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	return nil
}

// AddAttributeRequest is the HTTP request body for POST /identity/attributes.
type AddAttributeRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (r *AddAttributeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Key == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "key is required")
	}
	if r.Value == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "value is required")
	}
	return nil
}

// AuthorizeVerifierRequest is the HTTP request body for POST /verifiers.
type AuthorizeVerifierRequest struct {
	Verifier string `json:"verifier"`

	parsedVerifier id.Principal
}

func (r *AuthorizeVerifierRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	verifier, err := id.ParsePrincipal(strings.TrimSpace(r.Verifier))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "verifier is required")
	}
	r.parsedVerifier = verifier
	return nil
}

// ParsedVerifier returns the validated verifier principal.
func (r *AuthorizeVerifierRequest) ParsedVerifier() id.Principal {
	return r.parsedVerifier
}

// RequestVerificationRequest is the HTTP request body for POST /verifications.
type RequestVerificationRequest struct {
	Verifier     string `json:"verifier"`
	DocumentHash string `json:"document_hash"`

	parsedVerifier id.Principal
}

func (r *RequestVerificationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	verifier, err := id.ParsePrincipal(strings.TrimSpace(r.Verifier))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "verifier is required")
	}
	if strings.TrimSpace(r.DocumentHash) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "document_hash is required")
	}
	r.parsedVerifier = verifier
	return nil
}

// ParsedVerifier returns the validated verifier principal.
func (r *RequestVerificationRequest) ParsedVerifier() id.Principal {
	return r.parsedVerifier
}

// DecisionRequest is the HTTP request body for POST /verifications/{id}/decision.
// Approved is a pointer so a body that omits the field fails validation
// instead of silently rejecting.
type DecisionRequest struct {
	Approved *bool `json:"approved"`
}

func (r *DecisionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Approved == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "approved is required")
	}
	return nil
}
