package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/roomlobby/internal/dependencies/mocks"
	"github.com/mcoot/roomlobby/internal/dependencies/random"
	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/storage"
	"github.com/mcoot/roomlobby/internal/storage/memory"
)

type ResolverSuite struct {
	suite.Suite
	random   *mocks.MockRandom
	resolver *Resolver
	store    *memory.Storage
	ctx      context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.resolver = NewResolver(s.random)
	s.store = memory.New()
	s.ctx = context.Background()
}

// Resolve tests

func (s *ResolverSuite) TestPlayerTokenResumes() {
	d := s.resolver.Resolve(Inputs{PlayerToken: "tok-1"})

	s.Equal(ActionResume, d.Action)
	s.Require().NotNil(d.Login)
	s.Equal(model.PlayerToken("tok-1"), d.Login.PlayerToken)
	s.Nil(d.Register)
	s.Equal(0, s.random.StringCalls())
}

func (s *ResolverSuite) TestPlayerTokenWinsOverAccessTokenAndUser() {
	d := s.resolver.Resolve(Inputs{
		PlayerToken: "tok-1",
		AccessToken: "acc-1",
		User:        &model.AuthenticatedUser{DisplayName: "alice", Rating: 1800},
	})

	s.Equal(ActionResume, d.Action)
	s.Equal(model.PlayerToken("tok-1"), d.Login.PlayerToken)
}

func (s *ResolverSuite) TestNoTokensRegistersGuest() {
	s.random.QueueString("ab12")

	d := s.resolver.Resolve(Inputs{})

	s.Equal(ActionRegister, d.Action)
	s.True(d.Guest)
	s.Require().NotNil(d.Register)
	s.Equal("ab12_guest", d.Register.DisplayName)
	s.Equal(1200, d.Register.Rating)
	s.Nil(d.Login)
}

func (s *ResolverSuite) TestGuestIgnoresUserWithoutAccessToken() {
	s.random.QueueString("zz99")

	d := s.resolver.Resolve(Inputs{User: &model.AuthenticatedUser{DisplayName: "alice", Rating: 1800}})

	s.True(d.Guest)
	s.Equal("zz99_guest", d.Register.DisplayName)
	s.Equal(GuestRating, d.Register.Rating)
}

func (s *ResolverSuite) TestAccessTokenWithoutUserDefers() {
	d := s.resolver.Resolve(Inputs{AccessToken: "acc-1"})

	s.Equal(ActionDefer, d.Action)
	s.Nil(d.Login)
	s.Nil(d.Register)
	s.Equal(0, s.random.StringCalls())
}

func (s *ResolverSuite) TestAccessTokenWithUserRegistersUser() {
	d := s.resolver.Resolve(Inputs{
		AccessToken: "acc-1",
		User:        &model.AuthenticatedUser{DisplayName: "alice", Rating: 1800},
	})

	s.Equal(ActionRegister, d.Action)
	s.False(d.Guest)
	s.Equal("alice", d.Register.DisplayName)
	s.Equal(1800, d.Register.Rating)
}

func (s *ResolverSuite) TestResolveIsDeterministicForTokens() {
	in := Inputs{PlayerToken: "tok-1", AccessToken: "acc-1"}
	s.Equal(s.resolver.Resolve(in), s.resolver.Resolve(in))
}

func (s *ResolverSuite) TestActionString() {
	s.Equal("defer", ActionDefer.String())
	s.Equal("resume", ActionResume.String())
	s.Equal("register", ActionRegister.String())
}

// GuestName tests

func (s *ResolverSuite) TestGuestNamesAreDistinctAndSuffixed() {
	resolver := NewResolver(random.New())
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		name := resolver.GuestName()
		s.True(strings.HasSuffix(name, GuestSuffix))
		prefix := strings.TrimSuffix(name, GuestSuffix)
		s.Len(prefix, GuestNameLength)
		for _, ch := range prefix {
			s.Contains(random.Base36, string(ch))
		}
		seen[name] = true
	}
	// 36^4 names; fifty draws colliding more than a couple of times would be a bug
	s.GreaterOrEqual(len(seen), 48)
}

// LoadInputs tests

func (s *ResolverSuite) TestLoadInputsEmptyStore() {
	in, err := LoadInputs(s.ctx, s.store, nil)
	s.Require().NoError(err)
	s.Equal(Inputs{}, in)
}

func (s *ResolverSuite) TestLoadInputsReadsBothKeys() {
	user := &model.AuthenticatedUser{DisplayName: "alice", Rating: 1800}
	s.Require().NoError(s.store.Set(s.ctx, storage.KeyPlayerToken, "tok-1"))
	s.Require().NoError(s.store.Set(s.ctx, storage.KeyAccessToken, "acc-1"))

	in, err := LoadInputs(s.ctx, s.store, user)
	s.Require().NoError(err)

	s.Equal(model.PlayerToken("tok-1"), in.PlayerToken)
	s.Equal(model.AccessToken("acc-1"), in.AccessToken)
	s.Same(user, in.User)
}

func (s *ResolverSuite) TestLoadInputsPropagatesStoreErrors() {
	boom := errors.New("boom")
	_, err := LoadInputs(s.ctx, failingStore{err: boom}, nil)
	s.ErrorIs(err, boom)
}

type failingStore struct {
	storage.SessionStore
	err error
}

func (f failingStore) Get(context.Context, storage.Key) (string, error) {
	return "", f.err
}
