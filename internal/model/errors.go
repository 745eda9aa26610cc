package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Identity errors
	ErrUnauthenticated  = errors.New("no resumable player identity")
	ErrIdentityRejected = errors.New("server rejected identity")

	// Connection errors
	ErrConnectionLost = errors.New("connection lost")
	ErrNotConnected   = errors.New("not connected")

	// Session errors
	ErrInvalidStakes   = errors.New("time limit must be positive")
	ErrSessionAssigned = errors.New("session already assigned to a game")
	ErrSessionClosed   = errors.New("session closed")

	// Storage errors
	ErrKeyNotFound = errors.New("key not found")
)

// ServerError is a failure reported by the server over the session channel
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}
