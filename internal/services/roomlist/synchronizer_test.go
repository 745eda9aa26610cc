package roomlist

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/testutil"
)

type SynchronizerSuite struct {
	suite.Suite
	sync *Synchronizer
}

func TestSynchronizerSuite(t *testing.T) {
	suite.Run(t, new(SynchronizerSuite))
}

func (s *SynchronizerSuite) SetupTest() {
	s.sync = New(testutil.NopLogger())
}

func (s *SynchronizerSuite) TestStartsEmpty() {
	snap := s.sync.Current()
	s.Equal(0, snap.Len())
	s.Empty(snap.Games())
	s.Equal(uint64(0), snap.Version())
}

func (s *SynchronizerSuite) TestReplaceInstallsFullSnapshot() {
	s.sync.Replace([]model.GameInfo{
		testutil.Game("b", model.GameStateWaiting, 300),
		testutil.Game("a", model.GameStateInProgress, 600),
	})

	snap := s.sync.Current()
	s.Equal([]string{"b", "a"}, testutil.GameIDs(snap.Games()))
	s.Equal(uint64(1), snap.Version())
}

func (s *SynchronizerSuite) TestReplaceDropsRoomsMissingFromUpdate() {
	s.sync.Replace([]model.GameInfo{
		testutil.Game("a", model.GameStateWaiting, 300),
		testutil.Game("b", model.GameStateWaiting, 300),
	})
	s.sync.Replace([]model.GameInfo{testutil.Game("b", model.GameStateInProgress, 300)})

	snap := s.sync.Current()
	s.Equal([]string{"b"}, testutil.GameIDs(snap.Games()))
	_, ok := snap.Get("a")
	s.False(ok)

	b, ok := snap.Get("b")
	s.Require().True(ok)
	s.Equal(model.GameStateInProgress, b.GameState)
}

func (s *SynchronizerSuite) TestReplaceWithEmptyClearsList() {
	s.sync.Replace([]model.GameInfo{testutil.Game("a", model.GameStateWaiting, 300)})
	s.sync.Replace([]model.GameInfo{})

	s.Equal(0, s.sync.Current().Len())
}

func (s *SynchronizerSuite) TestDuplicateIDsKeepFirstPositionLastPayload() {
	s.sync.Replace([]model.GameInfo{
		testutil.Game("a", model.GameStateWaiting, 300),
		testutil.Game("b", model.GameStateWaiting, 300),
		testutil.Game("a", model.GameStateInProgress, 900),
	})

	snap := s.sync.Current()
	s.Equal([]string{"a", "b"}, testutil.GameIDs(snap.Games()))
	a, _ := snap.Get("a")
	s.Equal(900, a.TimeLimit)
	s.Equal(model.GameStateInProgress, a.GameState)
}

func (s *SynchronizerSuite) TestSnapshotDoesNotAliasInput() {
	g := testutil.Game("a", model.GameStateWaiting, 300)
	g.White = testutil.Seat(1500)
	g.Spectators = testutil.Spectators(2)
	input := []model.GameInfo{g}

	s.sync.Replace(input)
	input[0].TimeLimit = 1
	input[0].White.Rating = 1
	input[0].Spectators[0].Rating = 1

	a, _ := s.sync.Current().Get("a")
	s.Equal(300, a.TimeLimit)
	s.Equal(1500, a.White.Rating)
	s.Equal(1000, a.Spectators[0].Rating)
}

func (s *SynchronizerSuite) TestGamesReturnsCopy() {
	g := testutil.Game("a", model.GameStateWaiting, 300)
	g.Black = testutil.Seat(1400)
	s.sync.Replace([]model.GameInfo{g})

	games := s.sync.Current().Games()
	games[0].Black.Rating = 0
	games[0].GameID = "zzz"

	again := s.sync.Current().Games()
	s.Equal(model.GameID("a"), again[0].GameID)
	s.Equal(1400, again[0].Black.Rating)
}

func (s *SynchronizerSuite) TestOldSnapshotIsUnchangedByReplace() {
	s.sync.Replace([]model.GameInfo{testutil.Game("a", model.GameStateWaiting, 300)})
	old := s.sync.Current()

	s.sync.Replace([]model.GameInfo{testutil.Game("b", model.GameStateWaiting, 300)})

	s.Equal([]string{"a"}, testutil.GameIDs(old.Games()))
	s.Equal([]string{"b"}, testutil.GameIDs(s.sync.Current().Games()))
}

func (s *SynchronizerSuite) TestResetEmptiesAndBumpsVersion() {
	s.sync.Replace([]model.GameInfo{testutil.Game("a", model.GameStateWaiting, 300)})
	s.sync.Reset()

	snap := s.sync.Current()
	s.Equal(0, snap.Len())
	s.Equal(uint64(2), snap.Version())
}

// Subscribe tests

func (s *SynchronizerSuite) TestSubscriberReceivesLatestOnly() {
	ch, stop := s.sync.Subscribe()
	defer stop()

	s.sync.Replace([]model.GameInfo{testutil.Game("a", model.GameStateWaiting, 300)})
	s.sync.Replace([]model.GameInfo{testutil.Game("b", model.GameStateWaiting, 300)})
	s.sync.Replace([]model.GameInfo{testutil.Game("c", model.GameStateWaiting, 300)})

	snap := <-ch
	s.Equal([]string{"c"}, testutil.GameIDs(snap.Games()))
	s.Len(ch, 0)
}

func (s *SynchronizerSuite) TestSubscriberSeesReset() {
	ch, stop := s.sync.Subscribe()
	defer stop()

	s.sync.Replace([]model.GameInfo{testutil.Game("a", model.GameStateWaiting, 300)})
	<-ch
	s.sync.Reset()

	snap := <-ch
	s.Equal(0, snap.Len())
}

func (s *SynchronizerSuite) TestUnsubscribeClosesChannel() {
	ch, stop := s.sync.Subscribe()
	stop()
	stop()

	_, ok := <-ch
	s.False(ok)

	// Replace after unsubscribe must not panic on the closed channel
	s.NotPanics(func() {
		s.sync.Replace([]model.GameInfo{testutil.Game("a", model.GameStateWaiting, 300)})
	})
}
