package clock

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)

func liveMatch() *models.Match {
	return &models.Match{
		ID:     uuid.New(),
		IsLive: true,
		Status: models.MatchStatusNotStarted,
	}
}

func TestStartFirstHalf(t *testing.T) {
	cfg := DefaultConfig()
	m := liveMatch()

	upd, ev := Advance(CmdStartFirstHalf, m, t0, cfg)
	require.NotNil(t, upd)
	assert.Equal(t, models.MatchStatusInProgress, *upd.Status)
	assert.Equal(t, models.StageFirstHalf, *upd.Stage)
	assert.Equal(t, t0, *upd.StartTime)
	assert.Equal(t, TimerEvent{SignalStart, cfg.HalfDuration}, ev)

	upd.Apply(m)
	remaining, counting := Remaining(m, t0, cfg)
	require.True(t, counting)
	assert.Equal(t, cfg.HalfDuration, remaining)
}

func TestRemainingCountsDown(t *testing.T) {
	cfg := DefaultConfig()
	m := liveMatch()
	upd, _ := Advance(CmdStartSecondHalf, m, t0, cfg)
	upd.Apply(m)

	remaining, counting := Remaining(m, t0.Add(5*time.Minute), cfg)
	require.True(t, counting)
	assert.Equal(t, cfg.HalfDuration-300, remaining)
}

func TestRemainingGoesNegativeOnOverrun(t *testing.T) {
	// Clamping to zero is the presentation layer's job; the engine reports
	// the raw overrun.
	cfg := DefaultConfig()
	m := liveMatch()
	upd, _ := Advance(CmdStartFirstHalf, m, t0, cfg)
	upd.Apply(m)

	remaining, counting := Remaining(m, t0.Add(16*time.Minute), cfg)
	require.True(t, counting)
	assert.Equal(t, -60, remaining)
}

func TestRemainingNoCountdownForUntimedStages(t *testing.T) {
	cfg := DefaultConfig()

	for _, cmd := range []Command{CmdDeclareHalftime, CmdStartPenaltyShootout} {
		m := liveMatch()
		upd, ev := Advance(cmd, m, t0, cfg)
		upd.Apply(m)

		assert.Equal(t, SignalStop, ev.Signal)
		_, counting := Remaining(m, t0.Add(time.Minute), cfg)
		assert.False(t, counting, "cmd %s", cmd)
	}
}

func TestRemainingNoCountdownWhenNotLiveYetOrFinished(t *testing.T) {
	cfg := DefaultConfig()

	m := liveMatch()
	_, counting := Remaining(m, t0, cfg)
	assert.False(t, counting)

	upd, _ := Advance(CmdFinish, m, t0, cfg)
	upd.Apply(m)
	_, counting = Remaining(m, t0, cfg)
	assert.False(t, counting)

	_, counting = Remaining(nil, t0, cfg)
	assert.False(t, counting)
}

func TestPauseCapturesElapsed(t *testing.T) {
	cfg := Config{HalfDuration: 900, ExtraTimeDuration: 900, PenaltyShootoutDuration: 900}
	m := liveMatch()
	upd, _ := Advance(CmdStartFirstHalf, m, t0, cfg)
	upd.Apply(m)

	upd, ev := Advance(CmdPause, m, t0.Add(300*time.Second), cfg)
	require.NotNil(t, upd)
	assert.Equal(t, models.MatchStatusPaused, *upd.Status)
	require.NotNil(t, upd.FirstHalfElapsed)
	assert.Equal(t, 300, *upd.FirstHalfElapsed)
	assert.Equal(t, TimerEvent{SignalPause, 600}, ev)
}

func TestPauseResumeRoundTrip(t *testing.T) {
	cfg := Config{HalfDuration: 900, ExtraTimeDuration: 900, PenaltyShootoutDuration: 900}
	m := liveMatch()
	upd, _ := Advance(CmdStartFirstHalf, m, t0, cfg)
	upd.Apply(m)

	upd, _ = Advance(CmdPause, m, t0.Add(300*time.Second), cfg)
	upd.Apply(m)

	// Wall clock keeps moving while paused; remaining time must not.
	remaining, counting := Remaining(m, t0.Add(380*time.Second), cfg)
	require.True(t, counting)
	assert.Equal(t, 600, remaining)

	resumeAt := t0.Add(400 * time.Second)
	upd, ev := Advance(CmdResume, m, resumeAt, cfg)
	require.NotNil(t, upd)
	assert.Equal(t, TimerEvent{SignalResume, 600}, ev)
	require.NotNil(t, upd.StartTime)
	assert.Equal(t, resumeAt.Add(-300*time.Second), *upd.StartTime)

	upd.Apply(m)
	remaining, counting = Remaining(m, resumeAt, cfg)
	require.True(t, counting)
	assert.Equal(t, 600, remaining)
}

func TestPauseIsIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	m := liveMatch()
	upd, _ := Advance(CmdStartFirstHalf, m, t0, cfg)
	upd.Apply(m)
	upd, _ = Advance(CmdPause, m, t0.Add(time.Minute), cfg)
	upd.Apply(m)

	upd, ev := Advance(CmdPause, m, t0.Add(2*time.Minute), cfg)
	assert.Nil(t, upd)
	assert.Equal(t, SignalNone, ev.Signal)
}

func TestPauseDuringUntimedStageStopsClockOnly(t *testing.T) {
	cfg := DefaultConfig()
	m := liveMatch()
	upd, _ := Advance(CmdStartPenaltyShootout, m, t0, cfg)
	upd.Apply(m)

	upd, ev := Advance(CmdPause, m, t0.Add(time.Minute), cfg)
	assert.Nil(t, upd)
	assert.Equal(t, SignalStop, ev.Signal)
}

func TestResumePreconditionMissesAreSilent(t *testing.T) {
	cfg := DefaultConfig()

	m := liveMatch()
	upd, ev := Advance(CmdResume, m, t0, cfg)
	assert.Nil(t, upd)
	assert.Equal(t, SignalNone, ev.Signal)

	upd, _ = Advance(CmdStartFirstHalf, m, t0, cfg)
	upd.Apply(m)
	upd, ev = Advance(CmdResume, m, t0.Add(time.Minute), cfg)
	assert.Nil(t, upd)
	assert.Equal(t, SignalNone, ev.Signal)
}

func TestResumeDuringHalftimeReportsStoppedClock(t *testing.T) {
	cfg := DefaultConfig()
	m := liveMatch()
	upd, _ := Advance(CmdDeclareHalftime, m, t0, cfg)
	upd.Apply(m)
	m.Status = models.MatchStatusPaused

	upd, ev := Advance(CmdResume, m, t0.Add(time.Minute), cfg)
	assert.Nil(t, upd)
	assert.Equal(t, SignalStop, ev.Signal)
}

func TestExtraTimeUsesItsOwnDuration(t *testing.T) {
	cfg := Config{HalfDuration: 900, ExtraTimeDuration: 450, PenaltyShootoutDuration: 900}
	m := liveMatch()

	upd, ev := Advance(CmdStartExtraTime, m, t0, cfg)
	upd.Apply(m)
	assert.Equal(t, TimerEvent{SignalStart, 450}, ev)

	upd, ev = Advance(CmdPause, m, t0.Add(100*time.Second), cfg)
	require.NotNil(t, upd.ExtraTimeElapsed)
	assert.Equal(t, 100, *upd.ExtraTimeElapsed)
	assert.Equal(t, TimerEvent{SignalPause, 350}, ev)
}

func TestSecondHalfPauseTouchesOnlyItsElapsedField(t *testing.T) {
	cfg := DefaultConfig()
	m := liveMatch()
	m.FirstHalfElapsed = 900

	upd, _ := Advance(CmdStartSecondHalf, m, t0, cfg)
	upd.Apply(m)
	upd, _ = Advance(CmdPause, m, t0.Add(30*time.Second), cfg)
	require.NotNil(t, upd)
	assert.Nil(t, upd.FirstHalfElapsed)
	require.NotNil(t, upd.SecondHalfElapsed)
	assert.Equal(t, 30, *upd.SecondHalfElapsed)

	upd.Apply(m)
	assert.Equal(t, 900, m.FirstHalfElapsed)
}

func TestFinishStopsTheClock(t *testing.T) {
	cfg := DefaultConfig()
	m := liveMatch()
	upd, _ := Advance(CmdStartFirstHalf, m, t0, cfg)
	upd.Apply(m)

	upd, ev := Advance(CmdFinish, m, t0.Add(time.Minute), cfg)
	require.NotNil(t, upd)
	assert.Equal(t, models.MatchStatusFinished, *upd.Status)
	assert.Equal(t, SignalStop, ev.Signal)
}
