package models

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a tournament team
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	Players []Player `json:"players,omitempty"`
}
