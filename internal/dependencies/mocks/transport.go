package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/protocol"
	"github.com/mcoot/roomlobby/internal/transport"
)

// MockTransport records sent envelopes and replays events pushed by the test
type MockTransport struct {
	mu      sync.Mutex
	sent    []protocol.Envelope
	closed  bool
	sendErr error

	events chan transport.Event
}

var _ transport.Transport = (*MockTransport)(nil)

// NewMockTransport creates a transport with a generous event buffer
func NewMockTransport() *MockTransport {
	return &MockTransport{events: make(chan transport.Event, 64)}
}

func (t *MockTransport) Send(_ context.Context, env protocol.Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return model.ErrNotConnected
	}
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, env)
	return nil
}

func (t *MockTransport) Events() <-chan transport.Event {
	return t.events
}

func (t *MockTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.events)
	}
	return nil
}

// Emit queues an event for the consumer; it is a no-op after Close
func (t *MockTransport) Emit(ev transport.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.events <- ev
}

// FailSends makes every later Send return err
func (t *MockTransport) FailSends(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErr = err
}

// Sent returns a copy of every envelope sent so far
func (t *MockTransport) Sent() []protocol.Envelope {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]protocol.Envelope, len(t.sent))
	copy(out, t.sent)
	return out
}

// SentTypes returns the types of every envelope sent so far
func (t *MockTransport) SentTypes() []protocol.MessageType {
	sent := t.Sent()
	out := make([]protocol.MessageType, len(sent))
	for i, e := range sent {
		out[i] = e.Type
	}
	return out
}

// Closed reports whether Close was called
func (t *MockTransport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
