package redirect

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/mcoot/roomlobby/internal/model"
)

// Navigator moves the user into a game view
type Navigator interface {
	Navigate(ctx context.Context, gameID model.GameID) error
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(ctx context.Context, gameID model.GameID) error

func (f NavigatorFunc) Navigate(ctx context.Context, gameID model.GameID) error {
	return f(ctx, gameID)
}

// GamePath is the route of a game view
func GamePath(gameID model.GameID) string {
	return "/game/" + url.PathEscape(string(gameID))
}

// URLNavigator resolves the game URL against a base and hands it to Open
type URLNavigator struct {
	BaseURL string
	Open    func(ctx context.Context, gameURL string) error
}

// GameURL joins BaseURL and the game path
func (n *URLNavigator) GameURL(gameID model.GameID) string {
	return strings.TrimRight(n.BaseURL, "/") + GamePath(gameID)
}

func (n *URLNavigator) Navigate(ctx context.Context, gameID model.GameID) error {
	if n.Open == nil {
		return nil
	}
	return n.Open(ctx, n.GameURL(gameID))
}

// Trigger navigates once per distinct assigned game. The last navigated id
// survives reconnects, so a re-sent assignment after a drop is a no-op.
type Trigger struct {
	navigator Navigator
	logger    *slog.Logger

	mu   sync.Mutex
	last model.GameID
}

// NewTrigger creates a Trigger
func NewTrigger(navigator Navigator, logger *slog.Logger) *Trigger {
	return &Trigger{
		navigator: navigator,
		logger:    logger.With(slog.String("component", "redirect")),
	}
}

// Observe reports whether it navigated. A nil assignment never navigates.
func (t *Trigger) Observe(ctx context.Context, a *model.Assignment) (bool, error) {
	if a == nil || a.GameID == "" {
		return false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if a.GameID == t.last {
		return false, nil
	}
	if err := t.navigator.Navigate(ctx, a.GameID); err != nil {
		return false, fmt.Errorf("failed to navigate to game %s: %w", a.GameID, err)
	}
	t.last = a.GameID
	t.logger.Info("navigated to game", slog.String("game_id", string(a.GameID)))
	return true, nil
}

// Last returns the most recently navigated game id, if any
func (t *Trigger) Last() model.GameID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
