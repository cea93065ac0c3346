// Package clock implements the live-match timer state machine.
//
// The countdown is never stored: a running period is anchored to the
// wall-clock instant it (re)started, and remaining time is derived from that
// anchor plus a fixed stage duration. Pausing captures the consumed seconds
// into the match record; resuming re-anchors StartTime so the same derivation
// keeps working. This makes the clock self-correcting against drift and
// survives a process restart as long as the match record was persisted.
//
// All functions are pure: callers supply the match snapshot and "now".
package clock

import (
	"time"

	"github.com/pitchside/server/internal/models"
)

// Command is an admin action that drives the live-match state machine.
type Command string

const (
	CmdStartFirstHalf       Command = "start-firstHalf"
	CmdStartSecondHalf      Command = "start-secondHalf"
	CmdDeclareHalftime      Command = "declare-halftime"
	CmdStartExtraTime       Command = "start-extraTime"
	CmdStartPenaltyShootout Command = "start-penaltyShootout"
	CmdPause                Command = "pause"
	CmdResume               Command = "resume"
	CmdFinish               Command = "finish"
)

// Signal is the timer event a command produces for connected clients.
type Signal int

const (
	// SignalNone means the command changed nothing and nothing is emitted.
	SignalNone Signal = iota
	SignalStart
	SignalPause
	SignalResume
	SignalStop
)

// TimerEvent pairs a signal with the remaining seconds it carries.
// Seconds is meaningful for Start, Pause and Resume only.
type TimerEvent struct {
	Signal  Signal
	Seconds int
}

// Update lists the match fields a command wants persisted. Nil fields are
// left untouched, mirroring a partial UPDATE.
type Update struct {
	Status            *models.MatchStatus
	Stage             *models.MatchStage
	StartTime         *time.Time
	FirstHalfElapsed  *int
	SecondHalfElapsed *int
	ExtraTimeElapsed  *int
}

// Apply copies the non-nil fields onto a match snapshot. The coordinator uses
// it to keep its in-memory copy aligned with what was just persisted.
func (u *Update) Apply(m *models.Match) {
	if u == nil || m == nil {
		return
	}
	if u.Status != nil {
		m.Status = *u.Status
	}
	if u.Stage != nil {
		m.Stage = *u.Stage
	}
	if u.StartTime != nil {
		t := *u.StartTime
		m.StartTime = &t
	}
	if u.FirstHalfElapsed != nil {
		m.FirstHalfElapsed = *u.FirstHalfElapsed
	}
	if u.SecondHalfElapsed != nil {
		m.SecondHalfElapsed = *u.SecondHalfElapsed
	}
	if u.ExtraTimeElapsed != nil {
		m.ExtraTimeElapsed = *u.ExtraTimeElapsed
	}
}

// Remaining derives the countdown value for a match at the given instant.
// The boolean reports whether a countdown applies at all: untimed stages
// (Halftime, PenaltyShootout) and the NotStarted/Finished statuses have no
// countdown and the caller emits a stop signal instead.
//
// The value may be negative once a period overruns; presentation clamps at 0.
func Remaining(m *models.Match, now time.Time, cfg Config) (int, bool) {
	if m == nil {
		return 0, false
	}

	switch m.Status {
	case models.MatchStatusInProgress:
		if !m.Stage.Timed() {
			return 0, false
		}
		if m.StartTime == nil {
			return 0, false
		}
		elapsed := int(now.Sub(*m.StartTime) / time.Second)
		return cfg.DurationFor(m.Stage) - elapsed, true

	case models.MatchStatusPaused:
		if !m.Stage.Timed() {
			return 0, false
		}
		return cfg.DurationFor(m.Stage) - m.ElapsedFor(m.Stage), true

	default:
		return 0, false
	}
}

// Advance computes the persisted effect and emitted timer event of a command
// against the current live match. A nil Update means nothing is written.
//
// Precondition misses (pausing a match that is not running, resuming one that
// is not paused) are deliberately silent no-ops so that a stray admin click
// or a stale console cannot disturb the broadcast stream.
func Advance(cmd Command, m *models.Match, now time.Time, cfg Config) (*Update, TimerEvent) {
	switch cmd {
	case CmdStartFirstHalf:
		return startStage(models.StageFirstHalf, now), TimerEvent{SignalStart, cfg.HalfDuration}

	case CmdStartSecondHalf:
		return startStage(models.StageSecondHalf, now), TimerEvent{SignalStart, cfg.HalfDuration}

	case CmdDeclareHalftime:
		return startStage(models.StageHalftime, now), TimerEvent{Signal: SignalStop}

	case CmdStartExtraTime:
		return startStage(models.StageExtraTime, now), TimerEvent{SignalStart, cfg.ExtraTimeDuration}

	case CmdStartPenaltyShootout:
		return startStage(models.StagePenaltyShootout, now), TimerEvent{Signal: SignalStop}

	case CmdPause:
		return advancePause(m, now, cfg)

	case CmdResume:
		return advanceResume(m, now, cfg)

	case CmdFinish:
		status := models.MatchStatusFinished
		return &Update{Status: &status}, TimerEvent{Signal: SignalStop}

	default:
		return nil, TimerEvent{Signal: SignalNone}
	}
}

func startStage(stage models.MatchStage, now time.Time) *Update {
	status := models.MatchStatusInProgress
	return &Update{Status: &status, Stage: &stage, StartTime: &now}
}

func advancePause(m *models.Match, now time.Time, cfg Config) (*Update, TimerEvent) {
	if m.Status != models.MatchStatusInProgress {
		return nil, TimerEvent{Signal: SignalNone}
	}
	if !m.Stage.Timed() {
		// Nothing to pause during halftime or a shootout; just reassert
		// the stopped clock.
		return nil, TimerEvent{Signal: SignalStop}
	}
	if m.StartTime == nil {
		return nil, TimerEvent{Signal: SignalNone}
	}

	elapsed := int(now.Sub(*m.StartTime) / time.Second)
	remaining := cfg.DurationFor(m.Stage) - elapsed

	status := models.MatchStatusPaused
	upd := &Update{Status: &status}
	switch m.Stage {
	case models.StageFirstHalf:
		upd.FirstHalfElapsed = &elapsed
	case models.StageSecondHalf:
		upd.SecondHalfElapsed = &elapsed
	case models.StageExtraTime:
		upd.ExtraTimeElapsed = &elapsed
	}

	return upd, TimerEvent{SignalPause, remaining}
}

func advanceResume(m *models.Match, now time.Time, cfg Config) (*Update, TimerEvent) {
	if m.Status != models.MatchStatusPaused {
		return nil, TimerEvent{Signal: SignalNone}
	}
	if m.Stage == models.StageHalftime {
		return nil, TimerEvent{Signal: SignalStop}
	}
	if !m.Stage.Timed() {
		return nil, TimerEvent{Signal: SignalNone}
	}

	elapsed := m.ElapsedFor(m.Stage)
	remaining := cfg.DurationFor(m.Stage) - elapsed

	// Re-anchor the start time so that now-startTime equals the consumed
	// seconds; every later Remaining call then derives the right value.
	status := models.MatchStatusInProgress
	startTime := now.Add(-time.Duration(elapsed) * time.Second)
	return &Update{Status: &status, StartTime: &startTime}, TimerEvent{SignalResume, remaining}
}
