package testutil

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/roomlobby/internal/model"
)

// NopLogger returns a logger that discards all output.
// Use this in tests to avoid log noise.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Game builds a room with empty seats and no spectators
func Game(id string, state model.GameState, timeLimit int) model.GameInfo {
	return model.GameInfo{
		GameID:    model.GameID(id),
		GameState: state,
		TimeLimit: timeLimit,
	}
}

// Seat builds a seated player with the given rating
func Seat(rating int) *model.PlayerRef {
	return &model.PlayerRef{DisplayName: fmt.Sprintf("p%d", rating), Rating: rating}
}

// Spectators builds n anonymous spectators
func Spectators(n int) []model.PlayerRef {
	out := make([]model.PlayerRef, n)
	for i := range out {
		out[i] = model.PlayerRef{DisplayName: fmt.Sprintf("s%d", i), Rating: 1000}
	}
	return out
}

// GameIDs extracts ids in order, for readable assertions
func GameIDs(games []model.GameInfo) []string {
	ids := make([]string, len(games))
	for i, g := range games {
		ids[i] = string(g.GameID)
	}
	return ids
}
