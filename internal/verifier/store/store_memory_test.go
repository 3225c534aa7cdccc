package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	id "vouch/pkg/domain"
)

type VerifierStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *VerifierStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *VerifierStoreSuite) TestUnknownPrincipalIsNotAuthorized() {
	authorized, err := s.store.IsAuthorized(s.ctx, id.Principal("0xstranger"))
	s.Require().NoError(err)
	s.False(authorized)
}

func (s *VerifierStoreSuite) TestSetGrantsAuthorization() {
	s.Require().NoError(s.store.Set(s.ctx, id.Principal("0xverifier"), true))

	authorized, err := s.store.IsAuthorized(s.ctx, id.Principal("0xverifier"))
	s.Require().NoError(err)
	s.True(authorized)
}

func (s *VerifierStoreSuite) TestSetIsIdempotent() {
	verifier := id.Principal("0xverifier")
	s.Require().NoError(s.store.Set(s.ctx, verifier, true))
	s.Require().NoError(s.store.Set(s.ctx, verifier, true))

	authorized, err := s.store.IsAuthorized(s.ctx, verifier)
	s.Require().NoError(err)
	s.True(authorized)
}

func (s *VerifierStoreSuite) TestRevocationFlipsTheFlag() {
	verifier := id.Principal("0xverifier")
	s.Require().NoError(s.store.Set(s.ctx, verifier, true))
	s.Require().NoError(s.store.Set(s.ctx, verifier, false))

	authorized, err := s.store.IsAuthorized(s.ctx, verifier)
	s.Require().NoError(err)
	s.False(authorized)
}

func TestVerifierStoreSuite(t *testing.T) {
	suite.Run(t, new(VerifierStoreSuite))
}
