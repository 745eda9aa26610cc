package model

// GameID uniquely identifies a game room
type GameID string

// GameState is the server-reported phase of a room
type GameState string

const (
	GameStateWaiting    GameState = "waiting"     // Seat open, joinable
	GameStateInProgress GameState = "in-progress" // Both seats taken, clock running
	GameStateFinished   GameState = "finished"
	GameStateAborted    GameState = "aborted"
)

// DefaultTimeLimit is the time limit used by the lobby's create button (seconds)
const DefaultTimeLimit = 600

// PlayerRef is a seat or spectator entry in a room
type PlayerRef struct {
	DisplayName string
	Rating      int
}

// GameInfo is one room as sent by the server. Entries are replaced wholesale on
// every room-list update and never patched field by field.
type GameInfo struct {
	GameID     GameID
	GameState  GameState
	TimeLimit  int // seconds
	White      *PlayerRef
	Black      *PlayerRef
	Spectators []PlayerRef
}

// CombinedRating sums both seats; an empty seat counts as 0
func (g GameInfo) CombinedRating() int {
	total := 0
	if g.White != nil {
		total += g.White.Rating
	}
	if g.Black != nil {
		total += g.Black.Rating
	}
	return total
}

// SpectatorCount returns the number of spectators watching the room
func (g GameInfo) SpectatorCount() int {
	return len(g.Spectators)
}

// Clone returns a deep copy that shares no memory with g
func (g GameInfo) Clone() GameInfo {
	out := g
	if g.White != nil {
		w := *g.White
		out.White = &w
	}
	if g.Black != nil {
		b := *g.Black
		out.Black = &b
	}
	if g.Spectators != nil {
		out.Spectators = make([]PlayerRef, len(g.Spectators))
		copy(out.Spectators, g.Spectators)
	}
	return out
}

// Assignment is the server's notice that this session's player sits in a game
type Assignment struct {
	GameID GameID
}

// Stakes are the parameters for creating a new room
type Stakes struct {
	PlayWhite bool
	TimeLimit int // seconds, must be positive
}

// DefaultStakes returns the create-game parameters used by the lobby page
func DefaultStakes() Stakes {
	return Stakes{
		PlayWhite: true,
		TimeLimit: DefaultTimeLimit,
	}
}

// Validate checks the stakes can be sent to the server
func (s Stakes) Validate() error {
	if s.TimeLimit <= 0 {
		return ErrInvalidStakes
	}
	return nil
}
