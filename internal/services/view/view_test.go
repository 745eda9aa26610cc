package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/services/roomlist"
	"github.com/mcoot/roomlobby/internal/testutil"
)

func sampleGames() []model.GameInfo {
	g1 := testutil.Game("g1", model.GameStateWaiting, 300)
	g1.White = testutil.Seat(1500)

	g2 := testutil.Game("g2", model.GameStateInProgress, 600)
	g2.White = testutil.Seat(1000)
	g2.Black = testutil.Seat(1100)
	g2.Spectators = testutil.Spectators(3)

	g3 := testutil.Game("g3", model.GameStateWaiting, 180)
	g3.Black = testutil.Seat(2000)
	g3.Spectators = testutil.Spectators(1)

	g4 := testutil.Game("g4", model.GameStateFinished, 900)

	return []model.GameInfo{g2, g4, g1, g3}
}

func TestSortByGameIDAscAndDesc(t *testing.T) {
	games := []model.GameInfo{
		testutil.Game("b", model.GameStateWaiting, 300),
		testutil.Game("a", model.GameStateWaiting, 600),
	}

	asc := Derive(games, Criteria{Status: StatusAll, SortKey: SortGameID, Order: OrderAsc})
	assert.Equal(t, []string{"a", "b"}, testutil.GameIDs(asc))

	desc := Derive(games, Criteria{Status: StatusAll, SortKey: SortGameID, Order: OrderDesc})
	assert.Equal(t, []string{"b", "a"}, testutil.GameIDs(desc))
}

func TestSortKeys(t *testing.T) {
	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortGameID, []string{"g1", "g2", "g3", "g4"}},
		{SortTimer, []string{"g3", "g1", "g2", "g4"}},
		// g4 has no seats (0), g1 1500, g3 2000, g2 2100
		{SortRating, []string{"g4", "g1", "g3", "g2"}},
		// ties on 0 spectators keep input order: g4 before g1
		{SortPeople, []string{"g4", "g1", "g3", "g2"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := Derive(sampleGames(), Criteria{Status: StatusAll, SortKey: tt.key, Order: OrderAsc})
			assert.Equal(t, tt.want, testutil.GameIDs(got))
		})
	}
}

func TestDescIsExactReverseForEveryKey(t *testing.T) {
	for _, key := range SortKeys() {
		t.Run(string(key), func(t *testing.T) {
			asc := Derive(sampleGames(), Criteria{Status: StatusAll, SortKey: key, Order: OrderAsc})
			desc := Derive(sampleGames(), Criteria{Status: StatusAll, SortKey: key, Order: OrderDesc})

			ids := testutil.GameIDs(asc)
			reversed := make([]string, len(ids))
			for i, id := range ids {
				reversed[len(ids)-1-i] = id
			}
			assert.Equal(t, reversed, testutil.GameIDs(desc))
		})
	}
}

func TestFilterStatus(t *testing.T) {
	tests := []struct {
		status Status
		want   []string
	}{
		{StatusAll, []string{"g1", "g2", "g3", "g4"}},
		{StatusInGame, []string{"g2"}},
		{StatusAvailable, []string{"g1", "g3"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := Derive(sampleGames(), Criteria{Status: tt.status, SortKey: SortGameID, Order: OrderAsc})
			assert.Equal(t, tt.want, testutil.GameIDs(got))
		})
	}
}

func TestFilterIsExhaustiveAndExclusive(t *testing.T) {
	all := Derive(sampleGames(), Criteria{Status: StatusAll})
	inGame := Derive(sampleGames(), Criteria{Status: StatusInGame})
	available := Derive(sampleGames(), Criteria{Status: StatusAvailable})

	assert.Len(t, all, len(sampleGames()))
	for _, g := range all {
		inIG := contains(inGame, g.GameID)
		inAV := contains(available, g.GameID)
		assert.Equal(t, g.GameState == model.GameStateInProgress, inIG, g.GameID)
		assert.Equal(t, g.GameState == model.GameStateWaiting, inAV, g.GameID)
		assert.False(t, inIG && inAV, g.GameID)
	}
}

func contains(games []model.GameInfo, id model.GameID) bool {
	for _, g := range games {
		if g.GameID == id {
			return true
		}
	}
	return false
}

func TestUnknownCriteriaFallBack(t *testing.T) {
	got := Derive(sampleGames(), Criteria{Status: "bogus", SortKey: "bogus", Order: "sideways"})
	assert.Equal(t, []string{"g1", "g2", "g3", "g4"}, testutil.GameIDs(got))
}

func TestGameIDSortIsByteWise(t *testing.T) {
	games := []model.GameInfo{
		testutil.Game("b", model.GameStateWaiting, 1),
		testutil.Game("B", model.GameStateWaiting, 1),
		testutil.Game("a", model.GameStateWaiting, 1),
		testutil.Game("A", model.GameStateWaiting, 1),
	}
	got := Derive(games, DefaultCriteria())
	assert.Equal(t, []string{"A", "B", "a", "b"}, testutil.GameIDs(got))
}

func TestDeriveIsPure(t *testing.T) {
	input := sampleGames()
	before := testutil.GameIDs(input)
	c := Criteria{Status: StatusAll, SortKey: SortRating, Order: OrderDesc}

	first := Derive(input, c)
	second := Derive(input, c)

	assert.Equal(t, first, second)
	assert.Equal(t, before, testutil.GameIDs(input))

	// Output does not alias input
	first[0].TimeLimit = -1
	for _, g := range input {
		assert.NotEqual(t, -1, g.TimeLimit)
	}
}

func TestDeriveEmpty(t *testing.T) {
	got := Derive(nil, DefaultCriteria())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, StatusInGame, ParseStatus("in-game"))
	assert.Equal(t, StatusAvailable, ParseStatus("AVAILABLE"))
	assert.Equal(t, StatusAll, ParseStatus(""))
	assert.Equal(t, StatusAll, ParseStatus("waiting"))

	assert.Equal(t, SortTimer, ParseSortKey("timer"))
	assert.Equal(t, SortPeople, ParseSortKey("People"))
	assert.Equal(t, SortGameID, ParseSortKey("elo"))

	assert.Equal(t, OrderDesc, ParseOrder("DESC"))
	assert.Equal(t, OrderAsc, ParseOrder("asc"))
	assert.Equal(t, OrderAsc, ParseOrder("up"))
}

func TestOrderToggle(t *testing.T) {
	assert.Equal(t, OrderDesc, OrderAsc.Toggle())
	assert.Equal(t, OrderAsc, OrderDesc.Toggle())
	assert.Equal(t, OrderDesc, Order("").Toggle())
}

func TestBuildCountsTotalAndShown(t *testing.T) {
	sync := roomlist.New(testutil.NopLogger())
	sync.Replace(sampleGames())

	v := Build(sync.Current(), Criteria{Status: StatusAvailable, SortKey: SortTimer, Order: OrderAsc})

	require.Len(t, v.Games, 2)
	assert.Equal(t, 4, v.Total)
	assert.Equal(t, 2, v.Shown)
	assert.Equal(t, uint64(1), v.Version)
	assert.Equal(t, []string{"g3", "g1"}, testutil.GameIDs(v.Games))
	assert.Equal(t, SortTimer, v.Criteria.SortKey)
}
