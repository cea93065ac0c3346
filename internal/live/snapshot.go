package live

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/pitchside/server/internal/events"
	"github.com/pitchside/server/internal/models"
)

// Snapshot is the match:info payload: everything a scoreboard needs to
// render the live match, with goals reduced to their penalty flag.
type Snapshot struct {
	ID            uuid.UUID         `json:"id"`
	Stage         models.MatchStage `json:"stage"`
	HomeTeam      TeamInfo          `json:"homeTeam"`
	AwayTeam      TeamInfo          `json:"awayTeam"`
	HomeTeamGoals []GoalInfo        `json:"homeTeamGoals"`
	AwayTeamGoals []GoalInfo        `json:"awayTeamGoals"`
}

// TeamInfo identifies one side of the snapshot
type TeamInfo struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// GoalInfo is a goal as the scoreboard counts it
type GoalInfo struct {
	IsPenalty bool `json:"isPenalty"`
}

// SnapshotOf builds the broadcast snapshot for a match. Returns nil for nil.
func SnapshotOf(m *models.Match) *Snapshot {
	if m == nil {
		return nil
	}

	snap := &Snapshot{
		ID:            m.ID,
		Stage:         m.Stage,
		HomeTeamGoals: []GoalInfo{},
		AwayTeamGoals: []GoalInfo{},
	}
	if m.HomeTeam != nil {
		snap.HomeTeam = TeamInfo{ID: m.HomeTeam.ID, Name: m.HomeTeam.Name}
	}
	if m.AwayTeam != nil {
		snap.AwayTeam = TeamInfo{ID: m.AwayTeam.ID, Name: m.AwayTeam.Name}
	}
	for _, g := range m.HomeGoals {
		snap.HomeTeamGoals = append(snap.HomeTeamGoals, GoalInfo{IsPenalty: g.IsPenalty})
	}
	for _, g := range m.AwayGoals {
		snap.AwayTeamGoals = append(snap.AwayTeamGoals, GoalInfo{IsPenalty: g.IsPenalty})
	}
	return snap
}

// matchInfo wraps a snapshot in its event envelope. A nil match produces
// match:info with null data, telling viewers there is nothing to show.
func matchInfo(m *models.Match) events.Event {
	snap := SnapshotOf(m)
	if snap == nil {
		return events.Event{Type: events.TypeMatchInfo, Data: nil}
	}
	return events.Event{Type: events.TypeMatchInfo, Data: snap}
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errors.New("missing payload")
	}
	return json.Unmarshal(data, v)
}
