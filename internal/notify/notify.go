// Package notify delivers user-facing notices without ever blocking the caller.
package notify

import (
	"log/slog"
	"sync"

	"github.com/mcoot/roomlobby/internal/model"
)

// Notifier accepts notices. Implementations must not block.
type Notifier interface {
	Notify(n model.Notice)
}

// Func adapts a function to Notifier
type Func func(n model.Notice)

func (f Func) Notify(n model.Notice) {
	f(n)
}

// Discard drops every notice
var Discard Notifier = Func(func(model.Notice) {})

// Channel buffers notices for a single reader. When the buffer is full new
// notices are dropped and logged.
type Channel struct {
	ch     chan model.Notice
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewChannel creates a Channel holding up to size pending notices
func NewChannel(size int, logger *slog.Logger) *Channel {
	if size < 1 {
		size = 1
	}
	return &Channel{
		ch:     make(chan model.Notice, size),
		logger: logger.With(slog.String("component", "notify")),
	}
}

// Notices returns the stream; it is closed by Close
func (c *Channel) Notices() <-chan model.Notice {
	return c.ch
}

func (c *Channel) Notify(n model.Notice) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- n:
	default:
		c.logger.Warn("notice dropped - buffer full",
			slog.String("code", string(n.Code)),
			slog.String("message", n.Message))
	}
}

// Close stops delivery; later notices are discarded
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// Recorder keeps every notice in memory
type Recorder struct {
	mu      sync.Mutex
	notices []model.Notice
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n model.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far
func (r *Recorder) Notices() []model.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Codes returns the code of every recorded notice, in order
func (r *Recorder) Codes() []model.NoticeCode {
	notices := r.Notices()
	out := make([]model.NoticeCode, len(notices))
	for i, n := range notices {
		out[i] = n.Code
	}
	return out
}

// Reset forgets every recorded notice
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
