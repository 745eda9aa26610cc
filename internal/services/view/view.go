// Package view derives the filtered, sorted room list shown to the user.
// Everything here is pure: inputs are never mutated.
package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/services/roomlist"
)

// Status filters rooms by state
type Status string

const (
	StatusAll       Status = "ALL"
	StatusInGame    Status = "In-Game"
	StatusAvailable Status = "Available"
)

// SortKey picks the comparator
type SortKey string

const (
	SortGameID SortKey = "GameId"
	SortTimer  SortKey = "Timer"
	SortRating SortKey = "Rating"
	SortPeople SortKey = "People"
)

// Order is the sort direction
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Toggle flips the direction
func (o Order) Toggle() Order {
	if o == OrderDesc {
		return OrderAsc
	}
	return OrderDesc
}

// Criteria are the user's current selections
type Criteria struct {
	Status  Status
	SortKey SortKey
	Order   Order
}

// DefaultCriteria shows every room by id, ascending
func DefaultCriteria() Criteria {
	return Criteria{Status: StatusAll, SortKey: SortGameID, Order: OrderAsc}
}

// Statuses lists the recognised filters in display order
func Statuses() []Status {
	return []Status{StatusAll, StatusInGame, StatusAvailable}
}

// SortKeys lists the recognised sort keys in display order
func SortKeys() []SortKey {
	return []SortKey{SortGameID, SortTimer, SortRating, SortPeople}
}

// ParseStatus matches case-insensitively; anything else is ALL
func ParseStatus(s string) Status {
	for _, v := range Statuses() {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}
	return StatusAll
}

// ParseSortKey matches case-insensitively; anything else is GameId
func ParseSortKey(s string) SortKey {
	for _, v := range SortKeys() {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}
	return SortGameID
}

// ParseOrder matches case-insensitively; anything else is asc
func ParseOrder(s string) Order {
	if strings.EqualFold(s, string(OrderDesc)) {
		return OrderDesc
	}
	return OrderAsc
}

// Derive filters and sorts games. The ascending sort is stable; descending is
// the exact reverse of the ascending result, so ties come out in reverse
// input order.
func Derive(games []model.GameInfo, c Criteria) []model.GameInfo {
	out := make([]model.GameInfo, 0, len(games))
	for _, g := range games {
		if matches(g, c.Status) {
			out = append(out, g.Clone())
		}
	}

	slices.SortStableFunc(out, comparator(c.SortKey))
	if c.Order == OrderDesc {
		slices.Reverse(out)
	}
	return out
}

func matches(g model.GameInfo, status Status) bool {
	switch status {
	case StatusInGame:
		return g.GameState == model.GameStateInProgress
	case StatusAvailable:
		return g.GameState == model.GameStateWaiting
	default:
		return true
	}
}

func comparator(key SortKey) func(a, b model.GameInfo) int {
	switch key {
	case SortTimer:
		return func(a, b model.GameInfo) int { return cmp.Compare(a.TimeLimit, b.TimeLimit) }
	case SortRating:
		return func(a, b model.GameInfo) int { return cmp.Compare(a.CombinedRating(), b.CombinedRating()) }
	case SortPeople:
		return func(a, b model.GameInfo) int { return cmp.Compare(a.SpectatorCount(), b.SpectatorCount()) }
	default:
		// Byte-wise, not locale-aware
		return func(a, b model.GameInfo) int { return strings.Compare(string(a.GameID), string(b.GameID)) }
	}
}

// RoomListView is the projection the lobby page renders
type RoomListView struct {
	Games    []model.GameInfo
	Total    int // rooms in the snapshot
	Shown    int // rooms left after filtering
	Version  uint64
	Criteria Criteria
}

// Build derives the view for a snapshot
func Build(snap *roomlist.Snapshot, c Criteria) RoomListView {
	games := Derive(snap.Games(), c)
	return RoomListView{
		Games:    games,
		Total:    snap.Len(),
		Shown:    len(games),
		Version:  snap.Version(),
		Criteria: c,
	}
}
