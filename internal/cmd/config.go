package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pitchside/server/internal/clock"
	"gopkg.in/yaml.v3"
)

// Config holds everything main needs beyond the DB_* variables.
type Config struct {
	Port       string
	NATSURL    string
	NATSPrefix string
	Clock      clock.Config
}

type configFile struct {
	Clock clock.Config `yaml:"clock"`
}

// loadConfig builds the runtime configuration. Period durations come from
// config.yaml when present, then the *_DURATION environment variables
// (minutes) override them. Everything defaults to a 15-minute-half tournament
// on port 8080.
func loadConfig() (Config, error) {
	cfg := Config{
		Port:       getEnv("PORT", "8080"),
		NATSURL:    os.Getenv("NATS_URL"),
		NATSPrefix: getEnv("NATS_SUBJECT_PREFIX", "match.events"),
		Clock:      clock.DefaultConfig(),
	}

	if path := getEnv("CONFIG_FILE", "config.yaml"); fileExists(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		var file configFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
		if file.Clock.HalfDuration > 0 {
			cfg.Clock.HalfDuration = file.Clock.HalfDuration
		}
		if file.Clock.ExtraTimeDuration > 0 {
			cfg.Clock.ExtraTimeDuration = file.Clock.ExtraTimeDuration
		}
		if file.Clock.PenaltyShootoutDuration > 0 {
			cfg.Clock.PenaltyShootoutDuration = file.Clock.PenaltyShootoutDuration
		}
	}

	cfg.Clock.HalfDuration = minutesEnv("HALF_DURATION", cfg.Clock.HalfDuration)
	cfg.Clock.ExtraTimeDuration = minutesEnv("EXTRA_TIME_DURATION", cfg.Clock.ExtraTimeDuration)
	cfg.Clock.PenaltyShootoutDuration = minutesEnv("PENALTY_SHOOTOUT_DURATION", cfg.Clock.PenaltyShootoutDuration)

	return cfg, nil
}

func minutesEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil && minutes > 0 {
			return minutes * 60
		}
	}
	return fallback
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
