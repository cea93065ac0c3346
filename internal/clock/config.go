package clock

import "github.com/pitchside/server/internal/models"

// Config holds the period durations used to derive remaining time.
// All values are in seconds. ExtraTimeDuration is mutable at runtime via the
// set-extra-time admin command; changes apply to the next extra-time period
// and never rewrite a countdown that is already running.
type Config struct {
	HalfDuration            int `yaml:"half_duration"`
	ExtraTimeDuration       int `yaml:"extra_time_duration"`
	PenaltyShootoutDuration int `yaml:"penalty_shootout_duration"`
}

// DefaultConfig returns the standard 15-minute tournament periods.
func DefaultConfig() Config {
	return Config{
		HalfDuration:            15 * 60,
		ExtraTimeDuration:       15 * 60,
		PenaltyShootoutDuration: 15 * 60,
	}
}

// DurationFor returns the countdown duration for a timed stage, or 0 for an
// untimed one.
func (c Config) DurationFor(stage models.MatchStage) int {
	switch stage {
	case models.StageFirstHalf, models.StageSecondHalf:
		return c.HalfDuration
	case models.StageExtraTime:
		return c.ExtraTimeDuration
	default:
		return 0
	}
}
