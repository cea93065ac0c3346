package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchSide identifies which side of a match a goal counts for
type MatchSide string

const (
	SideHome MatchSide = "home"
	SideAway MatchSide = "away"
)

// Goal represents a goal scored in a match. IsPenalty is fixed at creation:
// true iff the goal was recorded during a penalty shootout.
type Goal struct {
	ID        uuid.UUID `json:"id"`
	MatchID   uuid.UUID `json:"match_id"`
	TeamID    uuid.UUID `json:"team_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	Side      MatchSide `json:"side"`
	IsPenalty bool      `json:"is_penalty"`
	CreatedAt time.Time `json:"created_at"`

	Player *Player `json:"player,omitempty"`
}
