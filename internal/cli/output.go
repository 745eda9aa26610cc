package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/services/identity"
	"github.com/mcoot/roomlobby/internal/services/view"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(o.out, data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(o.out, map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

// PrintNotice writes a notice to stderr
func (o *Output) PrintNotice(n model.Notice) {
	if o.format == "json" {
		o.printJSON(o.errOut, Notice{
			Time:    n.Time,
			Level:   string(n.Level),
			Code:    string(n.Code),
			Message: n.Message,
		})
		return
	}
	fmt.Fprintf(o.errOut, "[%s] %s: %s\n", n.Time.Format("15:04:05"), n.Level, n.Message)
}

func (o *Output) printJSON(w io.Writer, data any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RoomList:
		o.printRoomList(v)
	case Player:
		o.printPlayer(v)
	case GameLink:
		fmt.Fprintf(o.out, "Game: %s\n", v.URL)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(o.out, data)
	}
}

// RoomList is the rendered room-list view
type RoomList struct {
	Player  *Player `json:"player,omitempty"`
	Total   int     `json:"total"`
	Shown   int     `json:"shown"`
	Status  string  `json:"status"`
	SortKey string  `json:"sort"`
	Order   string  `json:"order"`
	Rooms   []Room  `json:"rooms"`
}

// Room is one row of the room list
type Room struct {
	GameID     string `json:"game_id"`
	State      string `json:"state"`
	TimeLimit  int    `json:"time_limit"`
	White      *Seat  `json:"white"`
	Black      *Seat  `json:"black"`
	Rating     int    `json:"rating"`
	Spectators int    `json:"spectators"`
}

// Seat is an occupied seat
type Seat struct {
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
}

// Player is the session's acknowledged identity
type Player struct {
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
	Guest       bool   `json:"guest"`
}

// GameLink points at the assigned game
type GameLink struct {
	GameID string `json:"game_id"`
	URL    string `json:"url"`
}

// Notice is a JSON-rendered notice
type Notice struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// NewRoomList converts a derived view for printing
func NewRoomList(v view.RoomListView, player *model.PlayerInfo) RoomList {
	out := RoomList{
		Total:   v.Total,
		Shown:   v.Shown,
		Status:  string(v.Criteria.Status),
		SortKey: string(v.Criteria.SortKey),
		Order:   string(v.Criteria.Order),
		Rooms:   make([]Room, len(v.Games)),
	}
	if player != nil {
		p := NewPlayer(*player)
		out.Player = &p
	}
	for i, g := range v.Games {
		out.Rooms[i] = Room{
			GameID:     string(g.GameID),
			State:      string(g.GameState),
			TimeLimit:  g.TimeLimit,
			White:      newSeat(g.White),
			Black:      newSeat(g.Black),
			Rating:     g.CombinedRating(),
			Spectators: g.SpectatorCount(),
		}
	}
	return out
}

// NewPlayer converts an acknowledged identity for printing
func NewPlayer(p model.PlayerInfo) Player {
	return Player{
		DisplayName: p.DisplayName,
		Rating:      p.Rating,
		Guest:       strings.HasSuffix(p.DisplayName, identity.GuestSuffix),
	}
}

func newSeat(p *model.PlayerRef) *Seat {
	if p == nil {
		return nil
	}
	return &Seat{DisplayName: p.DisplayName, Rating: p.Rating}
}

func (o *Output) printRoomList(l RoomList) {
	if l.Player != nil {
		fmt.Fprintf(o.out, "Playing as %s (%d)\n", l.Player.DisplayName, l.Player.Rating)
	}
	fmt.Fprintf(o.out, "%d Games (showing %d, %s, sorted by %s %s)\n", l.Total, l.Shown, l.Status, l.SortKey, l.Order)
	if len(l.Rooms) == 0 {
		fmt.Fprintln(o.out, "  no rooms")
		return
	}
	fmt.Fprintf(o.out, "  %-12s %-12s %6s  %-20s %-20s %6s %6s\n", "GAME", "STATE", "TIMER", "WHITE", "BLACK", "RATING", "PEOPLE")
	for _, r := range l.Rooms {
		fmt.Fprintf(o.out, "  %-12s %-12s %6s  %-20s %-20s %6d %6d\n",
			r.GameID, r.State, formatTimer(r.TimeLimit), formatSeat(r.White), formatSeat(r.Black), r.Rating, r.Spectators)
	}
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.Guest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.out, "Player: %s\n", p.DisplayName)
	fmt.Fprintf(o.out, "Rating: %d\n", p.Rating)
	fmt.Fprintf(o.out, "Guest: %s\n", guestStr)
}

func formatSeat(s *Seat) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%d)", s.DisplayName, s.Rating)
}

func formatTimer(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
