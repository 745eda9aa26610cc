package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/roomlobby/internal/model"
)

func TestEncodeUsesWireFieldNames(t *testing.T) {
	data, err := Encode(TypeCreateGame, CreateGameRequest{
		PlayerToken: "tok-1",
		PlayWhite:   true,
		TimeLimit:   600,
	})
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"type":"create-game","payload":{"playerToken":"tok-1","playWhite":true,"timeLimit":600}}`,
		string(data))
}

func TestEncodeWithoutPayload(t *testing.T) {
	data, err := Encode(TypeLogin, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"login"}`, string(data))
}

func TestDecodePlayerInfo(t *testing.T) {
	in, err := Decode([]byte(`{"type":"player-info","payload":{"displayName":"ab12_guest","rating":1200,"playerToken":"tok-9"}}`))
	require.NoError(t, err)

	require.NotNil(t, in.PlayerInfo)
	assert.Equal(t, TypePlayerInfo, in.Type)
	assert.Equal(t, model.PlayerInfo{DisplayName: "ab12_guest", Rating: 1200, Token: "tok-9"}, *in.PlayerInfo)
}

func TestDecodeGames(t *testing.T) {
	raw := `{"type":"games","payload":[
		{"gameId":"g1","gameState":"waiting","timeLimit":300,"white":{"displayName":"a","rating":1500},"black":null,"spectators":[]},
		{"gameId":"g2","gameState":"in-progress","timeLimit":600,"white":{"rating":1000},"black":{"rating":1100},"spectators":[{"displayName":"s","rating":900}]}
	]}`

	in, err := Decode([]byte(raw))
	require.NoError(t, err)
	require.Len(t, in.Games, 2)

	g1 := in.Games[0]
	assert.Equal(t, model.GameID("g1"), g1.GameID)
	assert.Equal(t, model.GameStateWaiting, g1.GameState)
	assert.Equal(t, 300, g1.TimeLimit)
	require.NotNil(t, g1.White)
	assert.Equal(t, 1500, g1.White.Rating)
	assert.Nil(t, g1.Black)
	assert.Empty(t, g1.Spectators)

	g2 := in.Games[1]
	assert.Equal(t, model.GameStateInProgress, g2.GameState)
	assert.Equal(t, 2100, g2.CombinedRating())
	assert.Equal(t, 1, g2.SpectatorCount())
}

func TestDecodeNullGamesIsEmptySnapshot(t *testing.T) {
	in, err := Decode([]byte(`{"type":"games","payload":null}`))
	require.NoError(t, err)
	assert.NotNil(t, in.Games)
	assert.Empty(t, in.Games)
}

func TestDecodeCurrentGame(t *testing.T) {
	in, err := Decode([]byte(`{"type":"current-game","payload":{"gameId":"g7"}}`))
	require.NoError(t, err)
	require.NotNil(t, in.CurrentGame)
	assert.Equal(t, model.GameID("g7"), in.CurrentGame.GameID)
}

func TestDecodeCurrentGameWithoutID(t *testing.T) {
	_, err := Decode([]byte(`{"type":"current-game","payload":{}}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeError(t *testing.T) {
	in, err := Decode([]byte(`{"type":"error","payload":{"code":"identity-rejected","message":"bad token"}}`))
	require.NoError(t, err)
	require.NotNil(t, in.Error)
	assert.Equal(t, CodeIdentityRejected, in.Error.Code)
	assert.Equal(t, "bad token (identity-rejected)", in.Error.Error())
}

func TestDecodeUnknownTypeIsNotAnError(t *testing.T) {
	in, err := Decode([]byte(`{"type":"chat","payload":{"text":"hi"}}`))
	require.NoError(t, err)
	assert.Equal(t, MessageType("chat"), in.Type)
	assert.Nil(t, in.PlayerInfo)
	assert.Nil(t, in.Games)
	assert.Nil(t, in.CurrentGame)
	assert.Nil(t, in.Error)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `hello`},
		{"missing type", `{"payload":{}}`},
		{"wrong payload shape", `{"type":"games","payload":{"gameId":"g1"}}`},
		{"wrong field type", `{"type":"player-info","payload":{"rating":"high"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestGameInfoFromModelKeepsEmptySeatsNull(t *testing.T) {
	g := model.GameInfo{
		GameID:    "g1",
		GameState: model.GameStateWaiting,
		TimeLimit: 600,
		White:     &model.PlayerRef{DisplayName: "a", Rating: 1200},
	}

	data, err := json.Marshal(GameInfoFromModel(g))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"gameId":"g1","gameState":"waiting","timeLimit":600,"white":{"displayName":"a","rating":1200},"black":null,"spectators":[]}`,
		string(data))
}
