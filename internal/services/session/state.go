package session

import "fmt"

// State is a connection/identity lifecycle state
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected // transport up, no identity yet
	StateIdentified
	StateIdle         // identified and browsing
	StateGameAssigned // terminal for the lobby
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateIdentified:
		return "identified"
	case StateIdle:
		return "idle"
	case StateGameAssigned:
		return "game_assigned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
