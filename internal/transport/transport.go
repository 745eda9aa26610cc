package transport

import (
	"context"

	"github.com/mcoot/roomlobby/internal/protocol"
)

// EventKind identifies what happened on the connection
type EventKind int

const (
	EventConnecting EventKind = iota
	EventConnected
	EventMessage
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventConnecting:
		return "connecting"
	case EventConnected:
		return "connected"
	case EventMessage:
		return "message"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is one notification from the transport, delivered in arrival order
type Event struct {
	Kind    EventKind
	Message protocol.Inbound // Set for EventMessage
	Err     error            // Set for EventDisconnected when the loss was not requested
}

// Transport is the realtime connection the session runs over. Events is
// closed after the final EventDisconnected.
type Transport interface {
	Send(ctx context.Context, env protocol.Envelope) error
	Events() <-chan Event
	Close() error
}
