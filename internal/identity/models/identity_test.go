package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vouch/pkg/domain-errors"
)

func TestNewIdentity_Invariants(t *testing.T) {
	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewIdentity("0xalice", "", "alice@example.com", "QmProfile", 1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects empty email", func(t *testing.T) {
		_, err := NewIdentity("0xalice", "Alice", "", "QmProfile", 1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero principal", func(t *testing.T) {
		_, err := NewIdentity("", "Alice", "alice@example.com", "QmProfile", 1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("starts unverified with equal timestamps", func(t *testing.T) {
		identity, err := NewIdentity("0xalice", "Alice", "alice@example.com", "QmProfile", 7)
		require.NoError(t, err)
		assert.False(t, identity.Verified)
		assert.Equal(t, identity.CreatedAt, identity.UpdatedAt)
		assert.Zero(t, identity.Attributes.Len())
	})
}

func TestIdentity_ApplyProfile(t *testing.T) {
	identity, err := NewIdentity("0xalice", "Alice", "alice@example.com", "QmProfile", 1)
	require.NoError(t, err)
	identity.MarkVerified(2)

	require.NoError(t, identity.ApplyProfile("Alice B", "alice.b@example.com", "QmProfile2", 3))

	assert.Equal(t, "Alice B", identity.Name)
	assert.Equal(t, "QmProfile2", identity.ProfileHash)
	assert.True(t, identity.Verified, "profile updates must not touch the verified flag")
	assert.EqualValues(t, 1, identity.CreatedAt)
	assert.EqualValues(t, 3, identity.UpdatedAt)
}

func TestIdentity_ApplyAttribute(t *testing.T) {
	identity, err := NewIdentity("0xalice", "Alice", "alice@example.com", "QmProfile", 1)
	require.NoError(t, err)

	t.Run("rejects empty key and value", func(t *testing.T) {
		err := identity.ApplyAttribute("", "BSc", 2)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		err = identity.ApplyAttribute("education", "", 2)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("upsert is last-write-wins with a stable key set", func(t *testing.T) {
		require.NoError(t, identity.ApplyAttribute("education", "BSc", 2))
		require.NoError(t, identity.ApplyAttribute("country", "NL", 3))
		require.NoError(t, identity.ApplyAttribute("education", "MSc", 4))

		assert.Equal(t, []string{"education", "country"}, identity.Attributes.Keys())
		assert.Equal(t, "MSc", identity.Attributes.Get("education"))
	})

	t.Run("missing key reads as empty string", func(t *testing.T) {
		assert.Equal(t, "", identity.Attributes.Get("nationality"))
	})
}

func TestIdentity_CloneIsIndependent(t *testing.T) {
	identity, err := NewIdentity("0xalice", "Alice", "alice@example.com", "QmProfile", 1)
	require.NoError(t, err)
	require.NoError(t, identity.ApplyAttribute("education", "BSc", 2))

	snapshot := identity.Clone()
	require.NoError(t, identity.ApplyAttribute("education", "MSc", 3))
	require.NoError(t, identity.ApplyAttribute("country", "NL", 4))

	assert.Equal(t, "BSc", snapshot.Attributes.Get("education"))
	assert.Equal(t, []string{"education"}, snapshot.Attributes.Keys())
}
