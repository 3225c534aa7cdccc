package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vouch/pkg/domain-errors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "vouch-test")

	signed, err := svc.Issue("0xalice", time.Minute)
	require.NoError(t, err)

	principal, err := svc.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "0xalice", principal)
}

func TestValidate_RejectsExpiredToken(t *testing.T) {
	svc := NewService("test-signing-key", "vouch-test")

	signed, err := svc.Issue("0xalice", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidate_RejectsForeignSignature(t *testing.T) {
	issuer := NewService("key-one", "vouch-test")
	validator := NewService("key-two", "vouch-test")

	signed, err := issuer.Issue("0xalice", time.Minute)
	require.NoError(t, err)

	_, err = validator.Validate(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidate_RejectsGarbage(t *testing.T) {
	svc := NewService("test-signing-key", "vouch-test")

	_, err := svc.Validate("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
