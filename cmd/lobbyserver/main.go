package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mcoot/roomlobby/internal/lobbyserver"
	"github.com/mcoot/roomlobby/internal/model"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load .env", slog.String("error", err.Error()))
	}

	config := lobbyserver.DefaultHTTPConfig()
	if port := os.Getenv("LOBBY_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid LOBBY_PORT", slog.String("port", port))
			os.Exit(1)
		}
		config.Port = p
	}

	lobby := lobbyserver.New(logger)
	seedDemo(lobby)

	// Seed an authenticated account so access-token logins can be tried locally
	if token := os.Getenv("LOBBY_DEMO_ACCESS_TOKEN"); token != "" {
		lobby.AddUser(token, model.AuthenticatedUser{DisplayName: "demo", Rating: 1650})
	}

	server := lobbyserver.NewHTTPServer(lobby, config, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

// seedDemo fills the room list with a few rooms in different states
func seedDemo(lobby *lobbyserver.Server) {
	lobby.SetGames(
		model.GameInfo{
			GameID:     "demo-1",
			GameState:  model.GameStateInProgress,
			TimeLimit:  300,
			White:      &model.PlayerRef{DisplayName: "ada", Rating: 1720},
			Black:      &model.PlayerRef{DisplayName: "grace", Rating: 1690},
			Spectators: []model.PlayerRef{{DisplayName: "linus", Rating: 1400}},
		},
		model.GameInfo{
			GameID:    "demo-2",
			GameState: model.GameStateWaiting,
			TimeLimit: model.DefaultTimeLimit,
			White:     &model.PlayerRef{DisplayName: "ken", Rating: 1510},
		},
		model.GameInfo{
			GameID:    "demo-3",
			GameState: model.GameStateWaiting,
			TimeLimit: 180,
			Black:     &model.PlayerRef{DisplayName: "barbara", Rating: 1880},
		},
	)
}
