package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombinedRating(t *testing.T) {
	tests := []struct {
		name  string
		white *PlayerRef
		black *PlayerRef
		want  int
	}{
		{"both seats", &PlayerRef{Rating: 1500}, &PlayerRef{Rating: 1600}, 3100},
		{"white only", &PlayerRef{Rating: 1500}, nil, 1500},
		{"black only", nil, &PlayerRef{Rating: 1600}, 1600},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GameInfo{White: tt.white, Black: tt.black}
			assert.Equal(t, tt.want, g.CombinedRating())
		})
	}
}

func TestDerivedFieldsOnValues(t *testing.T) {
	// Map values are not addressable
	games := map[GameID]GameInfo{
		"g1": {GameID: "g1", White: &PlayerRef{Rating: 1500}, Spectators: []PlayerRef{{}, {}}},
	}
	assert.Equal(t, 1500, games["g1"].CombinedRating())
	assert.Equal(t, 2, games["g1"].SpectatorCount())
	assert.Equal(t, 0, GameInfo{}.CombinedRating())
}

func TestCloneSharesNothing(t *testing.T) {
	g := GameInfo{
		GameID:     "g1",
		GameState:  GameStateInProgress,
		TimeLimit:  300,
		White:      &PlayerRef{DisplayName: "w", Rating: 1500},
		Black:      &PlayerRef{DisplayName: "b", Rating: 1600},
		Spectators: []PlayerRef{{DisplayName: "s", Rating: 1000}},
	}

	c := g.Clone()
	require.Equal(t, g, c)

	c.White.Rating = 1
	c.Black.DisplayName = "changed"
	c.Spectators[0].Rating = 2

	assert.Equal(t, 1500, g.White.Rating)
	assert.Equal(t, "b", g.Black.DisplayName)
	assert.Equal(t, 1000, g.Spectators[0].Rating)
}

func TestCloneKeepsNilFields(t *testing.T) {
	c := GameInfo{GameID: "g1"}.Clone()
	assert.Nil(t, c.White)
	assert.Nil(t, c.Black)
	assert.Nil(t, c.Spectators)
	assert.Equal(t, 0, c.SpectatorCount())
}

func TestStakes(t *testing.T) {
	d := DefaultStakes()
	assert.True(t, d.PlayWhite)
	assert.Equal(t, DefaultTimeLimit, d.TimeLimit)
	assert.NoError(t, d.Validate())

	assert.ErrorIs(t, Stakes{TimeLimit: 0}.Validate(), ErrInvalidStakes)
	assert.ErrorIs(t, Stakes{TimeLimit: -5}.Validate(), ErrInvalidStakes)
}

func TestServerError(t *testing.T) {
	assert.Equal(t, "bad token (invalid-token)", (&ServerError{Code: "invalid-token", Message: "bad token"}).Error())
	assert.Equal(t, "boom", (&ServerError{Message: "boom"}).Error())
}
