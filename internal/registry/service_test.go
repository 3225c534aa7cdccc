package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitystore "vouch/internal/identity/store"
	verificationstore "vouch/internal/verification/store"
	verifierstore "vouch/internal/verifier/store"
	id "vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	audit "vouch/pkg/platform/audit"
	"vouch/pkg/platform/audit/publisher"
	auditmemory "vouch/pkg/platform/audit/store/memory"
	"vouch/pkg/requestcontext"
)

const owner = id.Principal("0xowner")

type fixture struct {
	service    *Service
	auditStore *auditmemory.InMemoryStore
	tick       id.LogicalTime
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	auditStore := auditmemory.NewInMemoryStore()
	pub := publisher.NewPublisher(auditStore)
	t.Cleanup(pub.Close)
	service := New(
		owner,
		identitystore.NewInMemory(),
		verifierstore.NewInMemory(),
		verificationstore.NewInMemory(),
		pub,
	)
	return &fixture{service: service, auditStore: auditStore}
}

// as builds a call context for a caller, advancing the logical clock by one
// tick per call the way the substrate would.
func (f *fixture) as(caller id.Principal) context.Context {
	f.tick++
	ctx := requestcontext.WithCaller(context.Background(), caller)
	return requestcontext.WithTick(ctx, f.tick)
}

func TestCreateIdentity(t *testing.T) {
	t.Run("round-trips through GetIdentity", func(t *testing.T) {
		f := newFixture(t)

		created, err := f.service.CreateIdentity(f.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
		require.NoError(t, err)

		identity, err := f.service.GetIdentity(context.Background(), "0xalice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", identity.Name)
		assert.Equal(t, "alice@example.com", identity.Email)
		assert.Equal(t, "QmProfile", identity.ProfileHash)
		assert.False(t, identity.Verified)
		assert.Equal(t, created.CreatedAt, identity.CreatedAt)
		assert.Equal(t, identity.CreatedAt, identity.UpdatedAt)
	})

	t.Run("second create fails AlreadyExists and the count stays at one", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateIdentity(f.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
		require.NoError(t, err)

		_, err = f.service.CreateIdentity(f.as("0xalice"), "Alice Again", "alice@example.com", "QmProfile2")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyExists))

		stats, err := f.service.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalIdentities)
	})

	t.Run("rejects empty name or email", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateIdentity(f.as("0xalice"), "", "alice@example.com", "QmProfile")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = f.service.CreateIdentity(f.as("0xalice"), "Alice", "", "QmProfile")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects a caller-less context", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateIdentity(context.Background(), "Alice", "alice@example.com", "QmProfile")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestUpdateIdentity(t *testing.T) {
	t.Run("overwrites profile without touching verified or attributes", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateIdentity(f.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
		require.NoError(t, err)
		require.NoError(t, f.service.AddAttribute(f.as("0xalice"), "education", "BSc"))

		require.NoError(t, f.service.UpdateIdentity(f.as("0xalice"), "Alice B", "alice.b@example.com", "QmProfile2"))

		identity, err := f.service.GetIdentity(context.Background(), "0xalice")
		require.NoError(t, err)
		assert.Equal(t, "Alice B", identity.Name)
		assert.Equal(t, "QmProfile2", identity.ProfileHash)
		assert.False(t, identity.Verified)
		assert.Equal(t, []string{"education"}, identity.Attributes.Keys())
		assert.Greater(t, identity.UpdatedAt, identity.CreatedAt)
	})

	t.Run("fails NotFound without an identity", func(t *testing.T) {
		f := newFixture(t)

		err := f.service.UpdateIdentity(f.as("0xghost"), "Ghost", "ghost@example.com", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestAddAttribute(t *testing.T) {
	t.Run("idempotent key set with last-write-wins value", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateIdentity(f.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
		require.NoError(t, err)

		require.NoError(t, f.service.AddAttribute(f.as("0xalice"), "education", "BSc"))
		require.NoError(t, f.service.AddAttribute(f.as("0xalice"), "education", "MSc"))

		keys, err := f.service.GetAttributeKeys(context.Background(), "0xalice")
		require.NoError(t, err)
		assert.Equal(t, []string{"education"}, keys)

		value, err := f.service.GetAttribute(context.Background(), "0xalice", "education")
		require.NoError(t, err)
		assert.Equal(t, "MSc", value)
	})

	t.Run("ordering is stable across repeated reads", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateIdentity(f.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
		require.NoError(t, err)
		require.NoError(t, f.service.AddAttribute(f.as("0xalice"), "education", "BSc"))
		require.NoError(t, f.service.AddAttribute(f.as("0xalice"), "country", "NL"))
		require.NoError(t, f.service.AddAttribute(f.as("0xalice"), "employer", "ACME"))

		first, err := f.service.GetAttributeKeys(context.Background(), "0xalice")
		require.NoError(t, err)
		second, err := f.service.GetAttributeKeys(context.Background(), "0xalice")
		require.NoError(t, err)
		assert.Equal(t, []string{"education", "country", "employer"}, first)
		assert.Equal(t, first, second)
	})

	t.Run("missing key reads as empty string", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateIdentity(f.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
		require.NoError(t, err)

		value, err := f.service.GetAttribute(context.Background(), "0xalice", "nationality")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})

	t.Run("fails NotFound without an identity", func(t *testing.T) {
		f := newFixture(t)

		err := f.service.AddAttribute(f.as("0xghost"), "education", "BSc")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestAuthorizeVerifier(t *testing.T) {
	t.Run("owner authorizes a verifier", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.service.AuthorizeVerifier(f.as(owner), "0xverifier"))

		authorized, err := f.service.IsAuthorizedVerifier(context.Background(), "0xverifier")
		require.NoError(t, err)
		assert.True(t, authorized)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		f := newFixture(t)

		err := f.service.AuthorizeVerifier(f.as("0xalice"), "0xverifier")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("null verifier is rejected", func(t *testing.T) {
		f := newFixture(t)

		err := f.service.AuthorizeVerifier(f.as(owner), "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("re-authorizing is a no-op success", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.service.AuthorizeVerifier(f.as(owner), "0xverifier"))
		require.NoError(t, f.service.AuthorizeVerifier(f.as(owner), "0xverifier"))

		events, err := f.auditStore.ListByPrincipal(context.Background(), owner)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}

func TestRequestVerification(t *testing.T) {
	t.Run("unregistered requester fails NotFound", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.service.AuthorizeVerifier(f.as(owner), "0xverifier"))

		_, err := f.service.RequestVerification(f.as("0xghost"), "0xverifier", "Qm123")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("non-authorized verifier fails Unauthorized", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateIdentity(f.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
		require.NoError(t, err)

		_, err = f.service.RequestVerification(f.as("0xalice"), "0xstranger", "Qm123")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("empty document hash fails InvalidInput", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.service.AuthorizeVerifier(f.as(owner), "0xverifier"))
		_, err := f.service.CreateIdentity(f.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
		require.NoError(t, err)

		_, err = f.service.RequestVerification(f.as("0xalice"), "0xverifier", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("ids start at 1 and increase across requesters", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.service.AuthorizeVerifier(f.as(owner), "0xverifier"))
		_, err := f.service.CreateIdentity(f.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
		require.NoError(t, err)
		_, err = f.service.CreateIdentity(f.as("0xbob"), "Bob", "bob@example.com", "QmProfile")
		require.NoError(t, err)

		first, err := f.service.RequestVerification(f.as("0xalice"), "0xverifier", "Qm1")
		require.NoError(t, err)
		second, err := f.service.RequestVerification(f.as("0xalice"), "0xverifier", "Qm2")
		require.NoError(t, err)
		third, err := f.service.RequestVerification(f.as("0xbob"), "0xverifier", "Qm3")
		require.NoError(t, err)

		assert.EqualValues(t, 1, first)
		assert.EqualValues(t, 2, second)
		assert.EqualValues(t, 3, third)
	})
}

func TestProcessVerification(t *testing.T) {
	setup := func(t *testing.T) (*fixture, id.RequestID) {
		f := newFixture(t)
		require.NoError(t, f.service.AuthorizeVerifier(f.as(owner), "0xverifier"))
		_, err := f.service.CreateIdentity(f.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
		require.NoError(t, err)
		requestID, err := f.service.RequestVerification(f.as("0xalice"), "0xverifier", "Qm123")
		require.NoError(t, err)
		return f, requestID
	}

	t.Run("approval marks the requester verified", func(t *testing.T) {
		f, requestID := setup(t)

		require.NoError(t, f.service.ProcessVerification(f.as("0xverifier"), requestID, true))

		identity, err := f.service.GetIdentity(context.Background(), "0xalice")
		require.NoError(t, err)
		assert.True(t, identity.Verified)

		request, err := f.service.GetVerificationRequest(context.Background(), requestID)
		require.NoError(t, err)
		assert.True(t, request.Processed)
		assert.True(t, request.Approved)
	})

	t.Run("rejection leaves the identity unverified", func(t *testing.T) {
		f, requestID := setup(t)

		require.NoError(t, f.service.ProcessVerification(f.as("0xverifier"), requestID, false))

		identity, err := f.service.GetIdentity(context.Background(), "0xalice")
		require.NoError(t, err)
		assert.False(t, identity.Verified)
	})

	t.Run("double processing fails AlreadyProcessed and keeps the first decision", func(t *testing.T) {
		f, requestID := setup(t)

		require.NoError(t, f.service.ProcessVerification(f.as("0xverifier"), requestID, true))

		err := f.service.ProcessVerification(f.as("0xverifier"), requestID, false)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyProcessed))

		request, err := f.service.GetVerificationRequest(context.Background(), requestID)
		require.NoError(t, err)
		assert.True(t, request.Approved)
	})

	t.Run("unknown request fails NotFound", func(t *testing.T) {
		f, _ := setup(t)

		err := f.service.ProcessVerification(f.as("0xverifier"), 999, true)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("unassigned verifier is rejected even when authorized", func(t *testing.T) {
		f, requestID := setup(t)
		require.NoError(t, f.service.AuthorizeVerifier(f.as(owner), "0xother"))

		err := f.service.ProcessVerification(f.as("0xother"), requestID, true)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

		request, err := f.service.GetVerificationRequest(context.Background(), requestID)
		require.NoError(t, err)
		assert.False(t, request.Processed)
	})

	t.Run("non-verifier is rejected", func(t *testing.T) {
		f, requestID := setup(t)

		err := f.service.ProcessVerification(f.as("0xalice"), requestID, true)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

// TestEndToEnd walks the full happy path and checks the audit log carries the
// transitions in mutation order.
func TestEndToEnd(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.AuthorizeVerifier(f.as(owner), "0xverifier"))
	_, err := f.service.CreateIdentity(f.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
	require.NoError(t, err)
	requestID, err := f.service.RequestVerification(f.as("0xalice"), "0xverifier", "Qm123")
	require.NoError(t, err)
	assert.EqualValues(t, 1, requestID)
	require.NoError(t, f.service.ProcessVerification(f.as("0xverifier"), requestID, true))

	identity, err := f.service.GetIdentity(context.Background(), "0xalice")
	require.NoError(t, err)
	assert.True(t, identity.Verified)

	trail, err := f.service.AuditTrail(context.Background(), "0xalice")
	require.NoError(t, err)
	actions := make([]string, 0, len(trail))
	for _, event := range trail {
		actions = append(actions, event.Action)
	}
	assert.Equal(t, []string{
		string(audit.EventIdentityCreated),
		string(audit.EventVerificationRequested),
		string(audit.EventIdentityVerified),
	}, actions)

	// Sequence numbers mirror the injected ticks, strictly increasing.
	for i := 1; i < len(trail); i++ {
		assert.Greater(t, trail[i].Seq, trail[i-1].Seq)
	}
}

// TestFailedOperationsLeaveNoTrace pins the all-or-nothing contract: a failed
// call appends nothing and moves no counter.
func TestFailedOperationsLeaveNoTrace(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateIdentity(f.as("0xalice"), "", "alice@example.com", "QmProfile")
	require.Error(t, err)
	_, err = f.service.RequestVerification(f.as("0xalice"), "0xverifier", "Qm123")
	require.Error(t, err)

	stats, err := f.service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalIdentities)
	assert.EqualValues(t, 1, stats.NextRequestID)

	all, err := f.auditStore.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
