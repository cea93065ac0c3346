package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus represents the lifecycle state of a match
type MatchStatus string

const (
	MatchStatusNotStarted MatchStatus = "NotStarted"
	MatchStatusInProgress MatchStatus = "InProgress"
	MatchStatusPaused     MatchStatus = "Paused"
	MatchStatusFinished   MatchStatus = "Finished"
)

// MatchStage represents the phase of play within a live match.
// Only meaningful while the match is InProgress or Paused.
type MatchStage string

const (
	StageFirstHalf       MatchStage = "FirstHalf"
	StageHalftime        MatchStage = "Halftime"
	StageSecondHalf      MatchStage = "SecondHalf"
	StageExtraTime       MatchStage = "ExtraTime"
	StagePenaltyShootout MatchStage = "PenaltyShootout"
)

// Timed reports whether the stage runs a countdown. Halftime and the
// penalty shootout are untimed; the scoreboard shows a stopped clock.
func (s MatchStage) Timed() bool {
	switch s {
	case StageFirstHalf, StageSecondHalf, StageExtraTime:
		return true
	default:
		return false
	}
}

// Match represents a scheduled or played fixture between two teams.
//
// The clock fields follow the wall-clock-anchor design: StartTime marks when
// the current running period began, and the per-stage elapsed fields hold the
// seconds consumed up to the most recent pause of that stage. Remaining time
// is always derived, never stored.
type Match struct {
	ID          uuid.UUID   `json:"id"`
	HomeTeamID  uuid.UUID   `json:"home_team_id"`
	AwayTeamID  uuid.UUID   `json:"away_team_id"`
	ScheduledAt time.Time   `json:"scheduled_at"`
	IsLive      bool        `json:"is_live"`
	Status      MatchStatus `json:"status"`
	Stage       MatchStage  `json:"stage,omitempty"`
	StartTime   *time.Time  `json:"start_time,omitempty"`

	FirstHalfElapsed  int `json:"first_half_elapsed"`
	SecondHalfElapsed int `json:"second_half_elapsed"`
	ExtraTimeElapsed  int `json:"extra_time_elapsed"`

	CreatedAt time.Time `json:"created_at"`

	HomeTeam  *Team  `json:"home_team,omitempty"`
	AwayTeam  *Team  `json:"away_team,omitempty"`
	HomeGoals []Goal `json:"home_team_goals,omitempty"`
	AwayGoals []Goal `json:"away_team_goals,omitempty"`
}

// ElapsedFor returns the stored elapsed seconds for a timed stage.
func (m *Match) ElapsedFor(stage MatchStage) int {
	switch stage {
	case StageFirstHalf:
		return m.FirstHalfElapsed
	case StageSecondHalf:
		return m.SecondHalfElapsed
	case StageExtraTime:
		return m.ExtraTimeElapsed
	default:
		return 0
	}
}
