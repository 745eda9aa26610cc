package factory

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/roomlobby/internal/dependencies/mocks"
	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/notify"
	"github.com/mcoot/roomlobby/internal/services/redirect"
	"github.com/mcoot/roomlobby/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
	Notices    *notify.Recorder
	Navigator  *RecordingNavigator
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	notices := notify.NewRecorder()
	navigator := &RecordingNavigator{}

	app := newWithDependencies(store, mockClock, mockRandom, Config{
		Navigator: navigator,
		Notifier:  notices,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
		Notices:    notices,
		Navigator:  navigator,
	}
}

// RecordingNavigator remembers every game it was asked to open
type RecordingNavigator struct {
	mu      sync.Mutex
	visited []model.GameID
}

var _ redirect.Navigator = (*RecordingNavigator)(nil)

func (n *RecordingNavigator) Navigate(_ context.Context, gameID model.GameID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visited = append(n.visited, gameID)
	return nil
}

// Visited returns the navigated game ids in order
func (n *RecordingNavigator) Visited() []model.GameID {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.GameID, len(n.visited))
	copy(out, n.visited)
	return out
}
