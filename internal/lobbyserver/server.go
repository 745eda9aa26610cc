// Package lobbyserver is a small in-memory lobby server for local development
// and tests. It speaks the session-channel protocol over a websocket and
// serves the auth-store user endpoint, with just enough behavior to drive a
// client end to end.
package lobbyserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/mcoot/roomlobby/internal/middleware"
	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/protocol"
)

// CodeBadPayload answers a request whose payload cannot be used
const CodeBadPayload = "bad-payload"

// Server holds the scripted lobby state
type Server struct {
	logger *slog.Logger
	router *mux.Router

	mu       sync.Mutex
	games    []protocol.GameInfo
	players  map[string]protocol.PlayerInfo // by player token
	users    map[string]model.AuthenticatedUser
	conns    map[*conn]struct{}
	received []protocol.Envelope
	nextID   int

	// RejectRegister makes every register request fail with identity-rejected
	RejectRegister bool
}

type conn struct {
	ws    *websocket.Conn
	token string // player token once identified
}

// New creates a server with an empty room list
func New(logger *slog.Logger) *Server {
	s := &Server{
		logger:  logger.With(slog.String("component", "lobbyserver")),
		players: make(map[string]protocol.PlayerInfo),
		users:   make(map[string]model.AuthenticatedUser),
		conns:   make(map[*conn]struct{}),
	}

	r := mux.NewRouter()
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.Logging(s.logger))
	r.HandleFunc("/ws", s.serveWS).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/users/me", s.serveMe).Methods(http.MethodGet)
	api.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// WebsocketURL converts an http base URL into the session endpoint URL
func WebsocketURL(baseURL string) string {
	return "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"
}

// AddUser registers an access token the auth endpoint will accept
func (s *Server) AddUser(accessToken string, user model.AuthenticatedUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[accessToken] = user
}

// AddPlayer registers a resumable player token
func (s *Server) AddPlayer(token string, name string, rating int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[token] = protocol.PlayerInfo{DisplayName: name, Rating: rating, PlayerToken: token}
}

// SetGames replaces the room list and broadcasts the new snapshot
func (s *Server) SetGames(games ...model.GameInfo) {
	s.mu.Lock()
	s.games = make([]protocol.GameInfo, len(games))
	for i, g := range games {
		s.games[i] = protocol.GameInfoFromModel(g)
	}
	targets := s.connList()
	payload := s.gamesLocked()
	s.mu.Unlock()

	for _, c := range targets {
		s.send(c, protocol.TypeGames, payload)
	}
}

// Assign pushes a current-game notice to every connection identified as token
func (s *Server) Assign(token string, gameID string) {
	s.mu.Lock()
	var targets []*conn
	for c := range s.conns {
		if c.token == token {
			targets = append(targets, c)
		}
	}
	s.mu.Unlock()

	for _, c := range targets {
		s.send(c, protocol.TypeCurrentGame, protocol.CurrentGame{GameID: gameID})
	}
}

// DropConnections closes every open websocket abnormally
func (s *Server) DropConnections() {
	s.mu.Lock()
	targets := s.connList()
	s.mu.Unlock()

	for _, c := range targets {
		_ = c.ws.Close(websocket.StatusInternalError, "dropped")
	}
}

// Received returns every envelope the server has read, in order
func (s *Server) Received() []protocol.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Envelope, len(s.received))
	copy(out, s.received)
	return out
}

// ReceivedTypes returns the types of every envelope read, in order
func (s *Server) ReceivedTypes() []protocol.MessageType {
	envs := s.Received()
	out := make([]protocol.MessageType, len(envs))
	for i, e := range envs {
		out[i] = e.Type
	}
	return out
}

// ConnectionCount returns the number of open websockets
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) connList() []*conn {
	out := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		out = append(out, c)
	}
	return out
}

func (s *Server) gamesLocked() []protocol.GameInfo {
	out := make([]protocol.GameInfo, len(s.games))
	copy(out, s.games)
	return out
}

func (s *Server) serveMe(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	user, ok := s.users[token]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]string{"code": "UNAUTHORIZED", "message": "Invalid or expired session"},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"displayName": user.DisplayName, "rating": user.Rating})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	c := &conn{ws: ws}

	s.mu.Lock()
	s.conns[c] = struct{}{}
	snapshot := s.gamesLocked()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		_ = ws.CloseNow()
	}()

	s.send(c, protocol.TypeGames, snapshot)

	for {
		_, data, err := ws.Read(r.Context())
		if err != nil {
			return
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.sendError(c, "bad-json", "bad json")
			continue
		}

		s.mu.Lock()
		s.received = append(s.received, env)
		s.mu.Unlock()

		s.handle(c, env)
	}
}

func (s *Server) handle(c *conn, env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeRegister:
		var req protocol.RegisterRequest
		if !s.decodePayload(c, env, &req) {
			return
		}
		if req.DisplayName == "" {
			s.sendError(c, CodeBadPayload, "display name required")
			return
		}
		if s.RejectRegister {
			s.sendError(c, protocol.CodeIdentityRejected, "registration closed")
			return
		}
		s.mu.Lock()
		s.nextID++
		info := protocol.PlayerInfo{
			DisplayName: req.DisplayName,
			Rating:      req.Rating,
			PlayerToken: fmt.Sprintf("tok-%d", s.nextID),
		}
		s.players[info.PlayerToken] = info
		c.token = info.PlayerToken
		s.mu.Unlock()
		s.send(c, protocol.TypePlayerInfo, info)

	case protocol.TypeLogin:
		var req protocol.LoginRequest
		if !s.decodePayload(c, env, &req) {
			return
		}
		s.mu.Lock()
		info, ok := s.players[req.PlayerToken]
		if ok {
			c.token = info.PlayerToken
		}
		s.mu.Unlock()
		if !ok {
			s.sendError(c, protocol.CodeIdentityRejected, "unknown player token")
			return
		}
		s.send(c, protocol.TypePlayerInfo, info)

	case protocol.TypeCreateGame:
		var req protocol.CreateGameRequest
		if !s.decodePayload(c, env, &req) {
			return
		}
		if req.TimeLimit <= 0 {
			s.sendError(c, CodeBadPayload, "time limit must be positive")
			return
		}
		s.mu.Lock()
		info, ok := s.players[req.PlayerToken]
		if !ok {
			s.mu.Unlock()
			s.sendError(c, protocol.CodeInvalidToken, "unknown player token")
			return
		}
		s.nextID++
		game := protocol.GameInfo{
			GameID:     fmt.Sprintf("game-%d", s.nextID),
			GameState:  string(model.GameStateWaiting),
			TimeLimit:  req.TimeLimit,
			Spectators: []protocol.PlayerRef{},
		}
		seat := &protocol.PlayerRef{DisplayName: info.DisplayName, Rating: info.Rating}
		if req.PlayWhite {
			game.White = seat
		} else {
			game.Black = seat
		}
		s.games = append(s.games, game)
		targets := s.connList()
		snapshot := s.gamesLocked()
		s.mu.Unlock()

		for _, t := range targets {
			s.send(t, protocol.TypeGames, snapshot)
		}
		s.send(c, protocol.TypeCurrentGame, protocol.CurrentGame{GameID: game.GameID})

	default:
		s.sendError(c, "unknown-type", "unknown type")
	}
}

// decodePayload unmarshals env's payload into v, answering bad-payload on failure
func (s *Server) decodePayload(c *conn, env protocol.Envelope, v any) bool {
	if err := json.Unmarshal(env.Payload, v); err != nil {
		s.sendError(c, CodeBadPayload, fmt.Sprintf("bad %s payload", env.Type))
		return false
	}
	return true
}

func (s *Server) sendError(c *conn, code, message string) {
	s.send(c, protocol.TypeError, protocol.ErrorPayload{Code: code, Message: message})
}

func (s *Server) send(c *conn, t protocol.MessageType, payload any) {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		s.logger.Error("lobbyserver encode failed", slog.Any("error", err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = c.ws.Write(ctx, websocket.MessageText, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
