package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/roomlobby/internal/factory"
	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/notify"
	"github.com/mcoot/roomlobby/internal/services/redirect"
	"github.com/mcoot/roomlobby/internal/storage"
)

var (
	cfg       *Config
	app       *factory.App
	logger    *slog.Logger
	notices   *notify.Channel
	navigated chan GameLink
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	envErr := LoadDotEnv()
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "roomlobby",
		Short: "Browse and join live game lobbies",
		Long: `roomlobby connects to a game lobby server, identifies as a guest,
a resumed player or an authenticated user, and shows the live room list.

The player token issued by the server is kept in the session store so the
next run resumes the same identity. Use "roomlobby logout" to start over.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return fmt.Errorf("failed to load .env: %w", envErr)
			}
			return setup(cmd.Context(), cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Lobby websocket URL (env: ROOMLOBBY_SERVER)")
	flags.StringVar(&cfg.AuthURL, "auth-url", cfg.AuthURL, "Auth service base URL (env: ROOMLOBBY_AUTH_URL)")
	flags.StringVar(&cfg.GameURL, "game-url", cfg.GameURL, "Base URL of the game view (env: ROOMLOBBY_GAME_URL)")
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "Session store: file, memory, redis (env: ROOMLOBBY_STORAGE)")
	flags.StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "Session file path (env: ROOMLOBBY_SESSION_FILE)")
	flags.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for --storage=redis (env: ROOMLOBBY_REDIS_URL)")
	flags.StringVar(&cfg.SessionID, "session-id", cfg.SessionID, "Redis session id to resume (env: ROOMLOBBY_SESSION_ID)")
	flags.StringVar(&cfg.AccessToken, "access-token", cfg.AccessToken, "Authenticated user access token (env: ROOMLOBBY_ACCESS_TOKEN)")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "How long to wait for the server")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newLogoutCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	err := NewRootCmd().Execute()
	teardown()
	if err != nil {
		os.Exit(1)
	}
}

func setup(ctx context.Context, errOut io.Writer) error {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	fc, err := cfg.FactoryConfig()
	if err != nil {
		return err
	}

	notices = notify.NewChannel(32, logger)
	navigated = make(chan GameLink, 4)
	fc.Logger = logger
	fc.Notifier = notices
	links := &redirect.URLNavigator{BaseURL: cfg.GameURL}
	fc.Navigator = redirect.NavigatorFunc(func(_ context.Context, gameID model.GameID) error {
		select {
		case navigated <- GameLink{GameID: string(gameID), URL: links.GameURL(gameID)}:
		default:
		}
		return nil
	})

	app, err = factory.New(fc)
	if err != nil {
		return err
	}

	if cfg.AccessToken != "" {
		if err := app.Store.Set(ctx, storage.KeyAccessToken, cfg.AccessToken); err != nil {
			return fmt.Errorf("failed to store access token: %w", err)
		}
	}
	return nil
}

// teardown releases whatever setup created
func teardown() {
	if app != nil {
		if err := app.Close(); err != nil {
			logger.Warn("close failed", slog.Any("error", err))
		}
		app = nil
	}
	if notices != nil {
		notices.Close()
		notices = nil
	}
}

// withApp wraps a command body so the app is torn down however it exits
func withApp(fn func(cmd *cobra.Command, out *Output) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer teardown()
		return fn(cmd, NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr()))
	}
}
