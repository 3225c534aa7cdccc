package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"vouch/internal/registry/mocks"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
)

type mockFixture struct {
	service    *Service
	identities *mocks.MockIdentityStore
	verifiers  *mocks.MockVerifierStore
	requests   *mocks.MockRequestStore
	audit      *mocks.MockAuditPublisher
	tick       *fixture
}

func newMockFixture(t *testing.T) *mockFixture {
	ctrl := gomock.NewController(t)
	f := &mockFixture{
		identities: mocks.NewMockIdentityStore(ctrl),
		verifiers:  mocks.NewMockVerifierStore(ctrl),
		requests:   mocks.NewMockRequestStore(ctrl),
		audit:      mocks.NewMockAuditPublisher(ctrl),
		tick:       &fixture{},
	}
	f.service = New(owner, f.identities, f.verifiers, f.requests, f.audit)
	return f
}

func TestCreateIdentityStoreFailure(t *testing.T) {
	f := newMockFixture(t)
	storeErr := errors.New("disk on fire")
	f.identities.EXPECT().Create(gomock.Any(), gomock.Any()).Return(storeErr)

	_, err := f.service.CreateIdentity(f.tick.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.ErrorIs(t, err, storeErr)
}

func TestCreateIdentityAuditFailureDoesNotFailTheCall(t *testing.T) {
	f := newMockFixture(t)
	f.identities.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("sink down"))

	identity, err := f.service.CreateIdentity(f.tick.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
	require.NoError(t, err)
	assert.EqualValues(t, "0xalice", identity.Owner)
}

func TestCreateIdentityConflictSentinel(t *testing.T) {
	f := newMockFixture(t)
	f.identities.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

	_, err := f.service.CreateIdentity(f.tick.as("0xalice"), "Alice", "alice@example.com", "QmProfile")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyExists))
}

func TestRequestVerificationVerifierCheckFailure(t *testing.T) {
	f := newMockFixture(t)
	f.identities.EXPECT().FindByOwner(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

	_, err := f.service.RequestVerification(f.tick.as("0xalice"), "0xverifier", "Qm123")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestStatsStoreFailure(t *testing.T) {
	f := newMockFixture(t)
	f.identities.EXPECT().Count(gomock.Any()).Return(0, errors.New("count failed"))

	_, err := f.service.Stats(context.Background())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
