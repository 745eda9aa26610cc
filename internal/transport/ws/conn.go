package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/protocol"
	"github.com/mcoot/roomlobby/internal/transport"
)

// Config holds websocket connection settings
type Config struct {
	URL          string
	Header       http.Header
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	ReadLimit    int64 // Largest accepted frame in bytes
	EventBuffer  int
}

// DefaultConfig returns sensible defaults for a lobby connection
func DefaultConfig() Config {
	return Config{
		URL:          "ws://localhost:8080/ws",
		DialTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		ReadLimit:    1 << 20, // Room lists can get large
		EventBuffer:  64,
	}
}

// Conn is a transport.Transport over a websocket
type Conn struct {
	conn   *websocket.Conn
	cfg    Config
	logger *slog.Logger

	events chan transport.Event
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

// Ensure Conn implements the interface
var _ transport.Transport = (*Conn)(nil)

// Dial opens the connection. The first two events are always Connecting and
// Connected; the last is Disconnected, after which Events is closed.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Conn, error) {
	if cfg.EventBuffer < 2 {
		cfg.EventBuffer = 2
	}
	logger = logger.With(
		slog.String("component", "ws"),
		slog.String("conn_id", uuid.NewString()),
	)

	events := make(chan transport.Event, cfg.EventBuffer)
	events <- transport.Event{Kind: transport.EventConnecting}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	logger.Debug("ws dialing", slog.String("url", cfg.URL))
	c, _, err := websocket.Dial(dialCtx, cfg.URL, &websocket.DialOptions{
		HTTPHeader: cfg.Header,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.URL, err)
	}
	if cfg.ReadLimit > 0 {
		c.SetReadLimit(cfg.ReadLimit)
	}

	// The read loop outlives the dial context; it ends on Close or a read error
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	conn := &Conn{
		conn:   c,
		cfg:    cfg,
		logger: logger,
		events: events,
		ctx:    connCtx,
		cancel: cancel,
	}

	events <- transport.Event{Kind: transport.EventConnected}
	logger.Info("ws connected", slog.String("url", cfg.URL))

	go conn.readLoop()
	return conn, nil
}

// Events returns the ordered event stream
func (c *Conn) Events() <-chan transport.Event {
	return c.events
}

// Send writes one envelope as a text frame
func (c *Conn) Send(ctx context.Context, env protocol.Envelope) error {
	if c.isClosed() {
		return model.ErrNotConnected
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", env.Type, err)
	}

	if c.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.WriteTimeout)
		defer cancel()
	}

	if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write %s: %w", env.Type, err)
	}
	c.logger.Debug("ws sent", slog.String("type", string(env.Type)))
	return nil
}

// Close shuts the connection down with a normal closure
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		err = c.conn.Close(websocket.StatusNormalClosure, "bye")
		c.cancel()
	})
	return err
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) readLoop() {
	defer close(c.events)
	start := time.Now()

	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			c.finish(err, time.Since(start))
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			// One bad frame does not poison the session
			c.logger.Warn("ws dropped malformed frame", slog.Any("error", err))
			continue
		}

		select {
		case c.events <- transport.Event{Kind: transport.EventMessage, Message: msg}:
		case <-c.ctx.Done():
			c.finish(nil, time.Since(start))
			return
		}
	}
}

func (c *Conn) finish(readErr error, duration time.Duration) {
	ev := transport.Event{Kind: transport.EventDisconnected}

	requested := c.isClosed()
	switch {
	case requested, readErr == nil:
	case websocket.CloseStatus(readErr) == websocket.StatusNormalClosure,
		websocket.CloseStatus(readErr) == websocket.StatusGoingAway:
		ev.Err = fmt.Errorf("%w: server closed connection", model.ErrConnectionLost)
	default:
		ev.Err = fmt.Errorf("%w: %v", model.ErrConnectionLost, readErr)
	}

	c.logger.Info("ws disconnected",
		slog.Duration("connection_duration", duration),
		slog.Bool("requested", requested))

	if requested {
		// The owner asked for this and may have stopped reading
		select {
		case c.events <- ev:
		default:
		}
	} else {
		select {
		case c.events <- ev:
		case <-c.ctx.Done():
		}
	}

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}
