package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a squad member of a team
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TeamID    uuid.UUID `json:"team_id"`
	CreatedAt time.Time `json:"created_at"`

	Team *Team `json:"team,omitempty"`
}
