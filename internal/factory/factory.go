package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/roomlobby/internal/authstore"
	"github.com/mcoot/roomlobby/internal/dependencies/clock"
	"github.com/mcoot/roomlobby/internal/dependencies/random"
	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/notify"
	"github.com/mcoot/roomlobby/internal/services/identity"
	"github.com/mcoot/roomlobby/internal/services/redirect"
	"github.com/mcoot/roomlobby/internal/services/roomlist"
	"github.com/mcoot/roomlobby/internal/services/session"
	"github.com/mcoot/roomlobby/internal/storage"
	filestorage "github.com/mcoot/roomlobby/internal/storage/file"
	"github.com/mcoot/roomlobby/internal/storage/memory"
	redisstorage "github.com/mcoot/roomlobby/internal/storage/redis"
	"github.com/mcoot/roomlobby/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Store storage.SessionStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Resolver *identity.Resolver
	Rooms    *roomlist.Synchronizer
	Trigger  *redirect.Trigger
	Session  *session.Manager
	Notifier notify.Notifier
	Auth     *authstore.Client // nil without an auth URL

	logger  *slog.Logger
	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the session store ("memory", "file" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// SessionFile is the file store path (optional, file storage only)
	SessionFile string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SessionConfig tunes the session manager (optional)
	SessionConfig session.Config
	// Navigator is called once per assigned game (optional)
	Navigator redirect.Navigator
	// Notifier receives user-facing notices (optional)
	Notifier notify.Notifier
	// AuthURL is the auth service base URL (optional)
	AuthURL     string
	AuthTimeout time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.SessionStore
	var closers []func() error
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeFile:
		path := cfg.SessionFile
		if path == "" {
			path = filestorage.DefaultPath()
		}
		store = filestorage.New(path)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = redisStore
		closers = append(closers, redisStore.Close)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'file' or 'redis'")
	}

	app := newWithDependencies(store, clock.New(), random.New(), cfg, logger)
	app.closers = append(app.closers, closers...)
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.SessionStore, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	navigator := cfg.Navigator
	if navigator == nil {
		navigator = &redirect.URLNavigator{}
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.Discard
	}

	resolver := identity.NewResolver(rnd)
	rooms := roomlist.New(logger)
	trigger := redirect.NewTrigger(navigator, logger)
	manager := session.New(cfg.SessionConfig, resolver, store, rooms, trigger, notifier, clk, logger)

	var auth *authstore.Client
	if cfg.AuthURL != "" {
		auth = authstore.NewClient(cfg.AuthURL, cfg.AuthTimeout)
	}

	return &App{
		Store:    store,
		Clock:    clk,
		Random:   rnd,
		Resolver: resolver,
		Rooms:    rooms,
		Trigger:  trigger,
		Session:  manager,
		Notifier: notifier,
		Auth:     auth,
		logger:   logger,
	}
}

// Connect dials the lobby and processes its events in the background. The
// returned channel yields Run's result once the connection ends.
func (a *App) Connect(ctx context.Context, wsCfg ws.Config) (<-chan error, error) {
	conn, err := ws.Dial(ctx, wsCfg, a.logger)
	if err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	go func() {
		done <- a.Session.Run(ctx, conn)
	}()
	return done, nil
}

// LoadUser fetches the authenticated user for the stored access token and
// hands it to the session. Without an access token or auth client it does
// nothing.
func (a *App) LoadUser(ctx context.Context) error {
	if a.Auth == nil {
		return nil
	}
	token, err := a.Store.Get(ctx, storage.KeyAccessToken)
	if errors.Is(err, model.ErrKeyNotFound) || token == "" {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}

	user, err := a.Auth.FetchUser(ctx, model.AccessToken(token))
	if err != nil {
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	a.Session.SetUser(ctx, user)
	return nil
}

// Close tears down the session and releases backends
func (a *App) Close() error {
	errs := []error{a.Session.Close()}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
