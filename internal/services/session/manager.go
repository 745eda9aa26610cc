package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/roomlobby/internal/dependencies/clock"
	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/notify"
	"github.com/mcoot/roomlobby/internal/protocol"
	"github.com/mcoot/roomlobby/internal/services/identity"
	"github.com/mcoot/roomlobby/internal/services/redirect"
	"github.com/mcoot/roomlobby/internal/services/roomlist"
	"github.com/mcoot/roomlobby/internal/storage"
	"github.com/mcoot/roomlobby/internal/transport"
)

// Config holds session manager settings
type Config struct {
	// SendTimeout bounds every write to the transport
	SendTimeout time.Duration
}

// DefaultConfig returns the default session configuration
func DefaultConfig() Config {
	return Config{
		SendTimeout: 5 * time.Second,
	}
}

// Status is a consistent view of the manager's state
type Status struct {
	State      State
	Player     *model.PlayerInfo
	Assignment *model.Assignment
}

// Manager owns one lobby session: it sequences the identity handshake once per
// connection, feeds room-list snapshots to the synchronizer and hands
// assignments to the redirect trigger. Reactions are serialized by mu.
type Manager struct {
	cfg      Config
	resolver *identity.Resolver
	store    storage.SessionStore
	rooms    *roomlist.Synchronizer
	trigger  *redirect.Trigger
	notifier notify.Notifier
	clock    clock.Clock
	logger   *slog.Logger

	mu                sync.Mutex
	transport         transport.Transport
	state             State
	closed            bool
	user              *model.AuthenticatedUser
	identityRequested bool
	deferred          bool
	loggedOut         bool              // no identity is pending until the next connection
	redirect          *model.Assignment // handed to the trigger once mu is released
	connectedAt       time.Time
	player            *model.PlayerInfo
	assignment        *model.Assignment
	changed           chan struct{} // closed and replaced on every change
}

// New creates a Manager in the Disconnected state
func New(
	cfg Config,
	resolver *identity.Resolver,
	store storage.SessionStore,
	rooms *roomlist.Synchronizer,
	trigger *redirect.Trigger,
	notifier notify.Notifier,
	clock clock.Clock,
	logger *slog.Logger,
) *Manager {
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = DefaultConfig().SendTimeout
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Manager{
		cfg:      cfg,
		resolver: resolver,
		store:    store,
		rooms:    rooms,
		trigger:  trigger,
		notifier: notifier,
		clock:    clock,
		logger:   logger.With(slog.String("component", "session")),
		state:    StateDisconnected,
		changed:  make(chan struct{}),
	}
}

// Attach sets the transport used for outbound messages
func (m *Manager) Attach(t transport.Transport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transport = t
}

// Run processes transport events in arrival order until the stream ends or
// ctx is done.
func (m *Manager) Run(ctx context.Context, t transport.Transport) error {
	m.Attach(t)
	for {
		select {
		case ev, ok := <-t.Events():
			if !ok {
				return nil
			}
			m.HandleEvent(ctx, ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HandleEvent reacts to one transport event. Events after Close are ignored.
func (m *Manager) HandleEvent(ctx context.Context, ev transport.Event) {
	m.mu.Lock()
	m.handleEvent(ctx, ev)
	pending := m.redirect
	m.redirect = nil
	m.mu.Unlock()

	// The navigator may call back into the manager
	if pending != nil && m.trigger != nil {
		if _, err := m.trigger.Observe(ctx, pending); err != nil {
			m.logger.Error("redirect failed", slog.Any("error", err))
		}
	}
}

func (m *Manager) handleEvent(ctx context.Context, ev transport.Event) {
	if m.closed {
		m.logger.Debug("event after close ignored", slog.String("kind", ev.Kind.String()))
		return
	}

	switch ev.Kind {
	case transport.EventConnecting:
		m.identityRequested = false
		m.deferred = false
		m.loggedOut = false
		m.setState(StateConnecting)

	case transport.EventConnected:
		m.connectedAt = m.clock.Now()
		m.setState(StateConnected)
		m.resolveIdentity(ctx)

	case transport.EventMessage:
		m.handleMessage(ctx, ev.Message)

	case transport.EventDisconnected:
		m.reset()
		if ev.Err != nil {
			m.logger.Warn("connection lost", slog.Any("error", ev.Err))
			m.notify(model.NoticeError, model.NoticeConnectionLost, "Connection lost; room list cleared")
		}
	}
}

// SetUser supplies the authenticated user record. A deferred identity
// decision is re-evaluated; once an identity request went out it is a no-op.
func (m *Manager) SetUser(ctx context.Context, user *model.AuthenticatedUser) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.user = user
	if m.state == StateConnected && !m.identityRequested && !m.loggedOut {
		m.resolveIdentity(ctx)
	}
}

// CreateGame asks the server for a new room seated as the current player
func (m *Manager) CreateGame(ctx context.Context, stakes model.Stakes) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return model.ErrSessionClosed
	}
	if m.state == StateGameAssigned {
		return model.ErrSessionAssigned
	}

	token, err := m.storedPlayerToken(ctx)
	if err != nil {
		return err
	}
	if m.state != StateIdle || token == "" {
		m.notify(model.NoticeError, model.NoticeUnauthenticated, "Not signed in yet; cannot create a game")
		if token == "" {
			return fmt.Errorf("%w: no player token stored", model.ErrUnauthenticated)
		}
		return fmt.Errorf("%w: session not identified", model.ErrUnauthenticated)
	}

	if err := stakes.Validate(); err != nil {
		return err
	}

	m.logger.Info("creating game",
		slog.Bool("play_white", stakes.PlayWhite),
		slog.Int("time_limit", stakes.TimeLimit))
	return m.send(ctx, protocol.TypeCreateGame, protocol.CreateGameRequest{
		PlayerToken: string(token),
		PlayWhite:   stakes.PlayWhite,
		TimeLimit:   stakes.TimeLimit,
	})
}

// Logout forgets the stored identity and the acknowledged player
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session store: %w", err)
	}
	m.player = nil
	m.assignment = nil
	m.loggedOut = true
	if m.state == StateIdle || m.state == StateGameAssigned {
		m.setState(StateConnected)
	}
	m.logger.Info("logged out")
	return nil
}

// Close tears the session down. Any later reaction is discarded.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	t := m.transport
	m.signal()
	m.mu.Unlock()

	if t != nil {
		return t.Close()
	}
	return nil
}

// State returns the current state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Status returns state, player and assignment together
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status()
}

// PlayerInfo returns the acknowledged identity, if any
func (m *Manager) PlayerInfo() *model.PlayerInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyPlayer(m.player)
}

// Assignment returns the current game assignment, if any
func (m *Manager) Assignment() *model.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyAssignment(m.assignment)
}

// Snapshot returns the current room list
func (m *Manager) Snapshot() *roomlist.Snapshot {
	return m.rooms.Current()
}

// Rooms exposes the synchronizer for subscriptions
func (m *Manager) Rooms() *roomlist.Synchronizer {
	return m.rooms
}

// WaitFor blocks until cond holds for the current status, ctx is done or the
// manager is closed.
func (m *Manager) WaitFor(ctx context.Context, cond func(Status) bool) (Status, error) {
	for {
		m.mu.Lock()
		st := m.status()
		closed := m.closed
		changed := m.changed
		m.mu.Unlock()

		if cond(st) {
			return st, nil
		}
		if closed {
			return st, model.ErrSessionClosed
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

func (m *Manager) resolveIdentity(ctx context.Context) {
	if m.identityRequested {
		panic("session: second identity request on one connection")
	}

	inputs, err := identity.LoadInputs(ctx, m.store, m.user)
	if err != nil {
		m.logger.Error("failed to read session store", slog.Any("error", err))
		m.notify(model.NoticeError, model.NoticeServerError, "Could not read stored session")
		return
	}

	d := m.resolver.Resolve(inputs)
	m.logger.Debug("identity resolved", slog.String("action", d.Action.String()), slog.Bool("guest", d.Guest))

	switch d.Action {
	case identity.ActionDefer:
		m.deferred = true
		return
	case identity.ActionResume:
		m.identityRequested = true
		m.deferred = false
		err = m.send(ctx, protocol.TypeLogin, protocol.LoginRequest{PlayerToken: string(d.Login.PlayerToken)})
	case identity.ActionRegister:
		m.identityRequested = true
		m.deferred = false
		err = m.send(ctx, protocol.TypeRegister, protocol.RegisterRequest{
			DisplayName: d.Register.DisplayName,
			Rating:      d.Register.Rating,
		})
	}
	if err != nil {
		// The transport reports the drop separately
		m.logger.Warn("failed to send identity request", slog.Any("error", err))
	}
}

func (m *Manager) handleMessage(ctx context.Context, msg protocol.Inbound) {
	switch {
	case msg.PlayerInfo != nil:
		m.handlePlayerInfo(ctx, *msg.PlayerInfo)

	case msg.Type == protocol.TypeGames:
		m.rooms.Replace(msg.Games)

	case msg.CurrentGame != nil:
		m.assignment = copyAssignment(msg.CurrentGame)
		if m.identified() {
			m.enterAssigned()
		} else {
			m.logger.Debug("assignment held until identified", slog.String("game_id", string(msg.CurrentGame.GameID)))
			m.signal()
		}

	case msg.Error != nil:
		m.handleServerError(msg.Error)

	default:
		m.logger.Debug("unhandled message ignored", slog.String("type", string(msg.Type)))
	}
}

func (m *Manager) handlePlayerInfo(ctx context.Context, info model.PlayerInfo) {
	if !m.identityPending() {
		m.logger.Warn("unexpected identity ack ignored", slog.String("state", m.state.String()))
		return
	}

	m.player = &info
	m.persistToken(ctx, info.Token)
	m.setState(StateIdentified)
	m.logger.Info("identified",
		slog.String("display_name", info.DisplayName),
		slog.Int("rating", info.Rating),
		slog.Duration("handshake", m.clock.Since(m.connectedAt)))
	m.notify(model.NoticeInfo, model.NoticeIdentified, "Playing as "+info.DisplayName)

	if m.assignment != nil {
		m.enterAssigned()
		return
	}
	m.setState(StateIdle)
}

func (m *Manager) handleServerError(e *model.ServerError) {
	if m.identityPending() || e.Code == protocol.CodeIdentityRejected {
		m.logger.Warn("identity rejected", slog.String("code", e.Code), slog.String("message", e.Message))
		m.notify(model.NoticeError, model.NoticeIdentityRejected,
			fmt.Sprintf("Server rejected identity: %s. Log out to start over", e.Error()))
		return
	}
	m.logger.Warn("server error", slog.String("code", e.Code), slog.String("message", e.Message))
	m.notify(model.NoticeError, model.NoticeServerError, e.Error())
}

func (m *Manager) enterAssigned() {
	m.setState(StateGameAssigned)
	m.redirect = copyAssignment(m.assignment)
}

// identityPending reports whether an identity request on this connection
// still awaits its answer
func (m *Manager) identityPending() bool {
	return m.state == StateConnected && m.identityRequested && !m.loggedOut
}

// persistToken writes the token only when it differs from the stored one
func (m *Manager) persistToken(ctx context.Context, token model.PlayerToken) {
	if token == "" {
		return
	}
	stored, err := m.storedPlayerToken(ctx)
	if err == nil && stored == token {
		return
	}
	if err := m.store.Set(ctx, storage.KeyPlayerToken, string(token)); err != nil {
		m.logger.Error("failed to persist player token", slog.Any("error", err))
	}
}

func (m *Manager) storedPlayerToken(ctx context.Context) (model.PlayerToken, error) {
	v, err := m.store.Get(ctx, storage.KeyPlayerToken)
	if errors.Is(err, model.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read player token: %w", err)
	}
	return model.PlayerToken(v), nil
}

func (m *Manager) send(ctx context.Context, t protocol.MessageType, payload any) error {
	if m.transport == nil {
		return model.ErrNotConnected
	}
	env, err := protocol.NewEnvelope(t, payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, m.cfg.SendTimeout)
	defer cancel()
	if err := m.transport.Send(ctx, env); err != nil {
		return fmt.Errorf("failed to send %s: %w", t, err)
	}
	return nil
}

// reset discards everything tied to the lost connection
func (m *Manager) reset() {
	m.identityRequested = false
	m.deferred = false
	m.player = nil
	m.assignment = nil
	m.rooms.Reset()
	m.setState(StateDisconnected)
}

func (m *Manager) identified() bool {
	return m.state == StateIdle || m.state == StateIdentified || m.state == StateGameAssigned
}

func (m *Manager) setState(next State) {
	if m.state != next {
		m.logger.Debug("state change",
			slog.String("from", m.state.String()),
			slog.String("to", next.String()))
		m.state = next
	}
	m.signal()
}

func (m *Manager) signal() {
	close(m.changed)
	m.changed = make(chan struct{})
}

func (m *Manager) status() Status {
	return Status{
		State:      m.state,
		Player:     copyPlayer(m.player),
		Assignment: copyAssignment(m.assignment),
	}
}

func (m *Manager) notify(level model.NoticeLevel, code model.NoticeCode, message string) {
	m.notifier.Notify(model.Notice{
		Level:   level,
		Code:    code,
		Message: message,
		Time:    m.clock.Now(),
	})
}

func copyPlayer(p *model.PlayerInfo) *model.PlayerInfo {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func copyAssignment(a *model.Assignment) *model.Assignment {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
