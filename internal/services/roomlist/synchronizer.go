package roomlist

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mcoot/roomlobby/internal/model"
)

// Snapshot is an immutable room list. Nothing handed out by a Snapshot
// aliases its internal state.
type Snapshot struct {
	version uint64
	games   []model.GameInfo
	index   map[model.GameID]int
}

var emptySnapshot = &Snapshot{index: map[model.GameID]int{}}

// Version increases by one on every Replace or Reset
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Len returns the number of rooms
func (s *Snapshot) Len() int {
	return len(s.games)
}

// Games returns a deep copy of the rooms in server order
func (s *Snapshot) Games() []model.GameInfo {
	out := make([]model.GameInfo, len(s.games))
	for i, g := range s.games {
		out[i] = g.Clone()
	}
	return out
}

// Get looks up one room by id
func (s *Snapshot) Get(id model.GameID) (model.GameInfo, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.GameInfo{}, false
	}
	return s.games[i].Clone(), true
}

// Synchronizer owns the authoritative room list. Every update replaces the
// whole list.
type Synchronizer struct {
	current atomic.Pointer[Snapshot]
	logger  *slog.Logger

	mu   sync.Mutex // serializes writers and guards subs
	subs map[int]chan *Snapshot
	next int
}

// New creates a Synchronizer holding an empty snapshot
func New(logger *slog.Logger) *Synchronizer {
	s := &Synchronizer{
		logger: logger.With(slog.String("component", "roomlist")),
		subs:   make(map[int]chan *Snapshot),
	}
	s.current.Store(emptySnapshot)
	return s
}

// Current returns the latest snapshot
func (s *Synchronizer) Current() *Snapshot {
	return s.current.Load()
}

// Replace installs games as the new snapshot. Duplicate ids keep the position
// of their first occurrence and the payload of their last.
func (s *Synchronizer) Replace(games []model.GameInfo) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := &Snapshot{
		version: s.current.Load().version + 1,
		games:   make([]model.GameInfo, 0, len(games)),
		index:   make(map[model.GameID]int, len(games)),
	}
	for _, g := range games {
		if i, ok := next.index[g.GameID]; ok {
			next.games[i] = g.Clone()
			continue
		}
		next.index[g.GameID] = len(next.games)
		next.games = append(next.games, g.Clone())
	}
	if dropped := len(games) - len(next.games); dropped > 0 {
		s.logger.Warn("room list contained duplicate ids", slog.Int("duplicates", dropped))
	}

	s.install(next)
	s.logger.Debug("room list replaced",
		slog.Int("rooms", next.Len()),
		slog.Uint64("version", next.version))
	return next
}

// Reset empties the list, e.g. after the connection is lost
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.install(&Snapshot{
		version: s.current.Load().version + 1,
		index:   map[model.GameID]int{},
	})
}

// Subscribe returns a channel that always yields the most recent snapshot.
// Slow readers skip intermediate snapshots. Call the returned func to stop.
func (s *Synchronizer) Subscribe() (<-chan *Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan *Snapshot, 1)
	id := s.next
	s.next++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// install must be called with mu held
func (s *Synchronizer) install(next *Snapshot) {
	s.current.Store(next)
	for _, ch := range s.subs {
		// Latest wins: drain a stale pending value before pushing
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}
