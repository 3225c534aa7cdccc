package models

import (
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
)

// Identity is the aggregate root for one principal's registered identity.
//
// Invariants:
//   - At most one Identity ever exists per principal; once created it is
//     never deleted, only updated.
//   - Name and Email are non-empty.
//   - Verified transitions false→true exactly once (by an approved
//     verification) and never back.
//   - Attribute keys preserve first-insertion order and contain no
//     duplicates.
//   - CreatedAt is immutable after construction; UpdatedAt moves forward
//     with every mutation.
type Identity struct {
	Owner       id.Principal
	Name        string
	Email       string
	ProfileHash string
	Verified    bool
	CreatedAt   id.LogicalTime
	UpdatedAt   id.LogicalTime
	Attributes  *Attributes
}

func NewIdentity(owner id.Principal, name, email, profileHash string, now id.LogicalTime) (*Identity, error) {
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "principal cannot be empty")
	}
	if err := validateProfile(name, email); err != nil {
		return nil, err
	}
	return &Identity{
		Owner:       owner,
		Name:        name,
		Email:       email,
		ProfileHash: profileHash,
		Verified:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
		Attributes:  NewAttributes(),
	}, nil
}

// ApplyProfile overwrites name, email, and profile hash. Does not touch the
// verified flag or attributes.
func (i *Identity) ApplyProfile(name, email, profileHash string, now id.LogicalTime) error {
	if err := validateProfile(name, email); err != nil {
		return err
	}
	i.Name = name
	i.Email = email
	i.ProfileHash = profileHash
	i.UpdatedAt = now
	return nil
}

// ApplyAttribute upserts one attribute. A new key lands at the end of the
// order; an existing key keeps its slot.
func (i *Identity) ApplyAttribute(key, value string, now id.LogicalTime) error {
	if key == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "attribute key cannot be empty")
	}
	if value == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "attribute value cannot be empty")
	}
	i.Attributes.Set(key, value)
	i.UpdatedAt = now
	return nil
}

// MarkVerified flips the verified flag. The workflow guarantees this fires at
// most once per approved request; the flag itself never flips back.
func (i *Identity) MarkVerified(now id.LogicalTime) {
	i.Verified = true
	i.UpdatedAt = now
}

// Clone returns an independent deep copy for snapshot reads.
func (i *Identity) Clone() *Identity {
	clone := *i
	clone.Attributes = i.Attributes.Clone()
	return &clone
}

func validateProfile(name, email string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name cannot be empty")
	}
	if email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email cannot be empty")
	}
	return nil
}
