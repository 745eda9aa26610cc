package protocol

import (
	"encoding/json"

	"github.com/mcoot/roomlobby/internal/model"
)

// MessageType names a session-channel message
type MessageType string

const (
	// Client -> server
	TypeRegister   MessageType = "register"
	TypeLogin      MessageType = "login"
	TypeCreateGame MessageType = "create-game"

	// Server -> client
	TypePlayerInfo  MessageType = "player-info"
	TypeGames       MessageType = "games"
	TypeCurrentGame MessageType = "current-game"
	TypeError       MessageType = "error"
)

// Error codes the server uses on the session channel
const (
	CodeIdentityRejected = "identity-rejected"
	CodeInvalidToken     = "invalid-token"
)

// Envelope is the frame every message travels in
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RegisterRequest asks the server for a new identity
type RegisterRequest struct {
	DisplayName string `json:"displayName"`
	Rating      int    `json:"rating"`
}

// LoginRequest resumes a previously issued identity
type LoginRequest struct {
	PlayerToken string `json:"playerToken"`
}

// CreateGameRequest asks the server to open a new room
type CreateGameRequest struct {
	PlayerToken string `json:"playerToken"`
	PlayWhite   bool   `json:"playWhite"`
	TimeLimit   int    `json:"timeLimit"`
}

// PlayerInfo acknowledges an identity
type PlayerInfo struct {
	DisplayName string `json:"displayName"`
	Rating      int    `json:"rating"`
	PlayerToken string `json:"playerToken"`
}

// PlayerRef is a seat or spectator
type PlayerRef struct {
	DisplayName string `json:"displayName,omitempty"`
	Rating      int    `json:"rating"`
}

// GameInfo is one room in a room-list snapshot
type GameInfo struct {
	GameID     string      `json:"gameId"`
	GameState  string      `json:"gameState"`
	TimeLimit  int         `json:"timeLimit"`
	White      *PlayerRef  `json:"white"`
	Black      *PlayerRef  `json:"black"`
	Spectators []PlayerRef `json:"spectators"`
}

// CurrentGame assigns the session's player to a game
type CurrentGame struct {
	GameID string `json:"gameId"`
}

// ErrorPayload reports a failure for a previous request
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToModel converts a PlayerInfo payload
func (p PlayerInfo) ToModel() model.PlayerInfo {
	return model.PlayerInfo{
		DisplayName: p.DisplayName,
		Rating:      p.Rating,
		Token:       model.PlayerToken(p.PlayerToken),
	}
}

func refToModel(r *PlayerRef) *model.PlayerRef {
	if r == nil {
		return nil
	}
	return &model.PlayerRef{DisplayName: r.DisplayName, Rating: r.Rating}
}

// ToModel converts a GameInfo payload
func (g GameInfo) ToModel() model.GameInfo {
	out := model.GameInfo{
		GameID:    model.GameID(g.GameID),
		GameState: model.GameState(g.GameState),
		TimeLimit: g.TimeLimit,
		White:     refToModel(g.White),
		Black:     refToModel(g.Black),
	}
	if len(g.Spectators) > 0 {
		out.Spectators = make([]model.PlayerRef, len(g.Spectators))
		for i, s := range g.Spectators {
			out.Spectators[i] = model.PlayerRef{DisplayName: s.DisplayName, Rating: s.Rating}
		}
	}
	return out
}

// GamesToModel converts a full room-list payload
func GamesToModel(games []GameInfo) []model.GameInfo {
	out := make([]model.GameInfo, len(games))
	for i, g := range games {
		out[i] = g.ToModel()
	}
	return out
}

// GameInfoFromModel converts a model.GameInfo for the wire
func GameInfoFromModel(g model.GameInfo) GameInfo {
	out := GameInfo{
		GameID:     string(g.GameID),
		GameState:  string(g.GameState),
		TimeLimit:  g.TimeLimit,
		Spectators: make([]PlayerRef, len(g.Spectators)),
	}
	if g.White != nil {
		out.White = &PlayerRef{DisplayName: g.White.DisplayName, Rating: g.White.Rating}
	}
	if g.Black != nil {
		out.Black = &PlayerRef{DisplayName: g.Black.DisplayName, Rating: g.Black.Rating}
	}
	for i, s := range g.Spectators {
		out.Spectators[i] = PlayerRef{DisplayName: s.DisplayName, Rating: s.Rating}
	}
	return out
}

// ToModel converts an error payload
func (e ErrorPayload) ToModel() *model.ServerError {
	return &model.ServerError{Code: e.Code, Message: e.Message}
}
