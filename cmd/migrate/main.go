// Command migrate applies the SQL migrations in migrations/ to the configured
// Postgres database. Usage: migrate [up|down|version].
package main

import (
	"errors"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/pitchside/server/internal/dbconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	dbCfg := dbconfig.NewConfigFromEnv()
	// golang-migrate selects its driver by URL scheme.
	databaseURL := "pgx5://" + strings.TrimPrefix(dbCfg.DSN(), "postgres://")

	sourceURL := "file://migrations"
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		sourceURL = "file://" + v
	}

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create migrator")
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal().Err(verr).Msg("failed to read migration version")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("current migration version")
		return
	default:
		log.Fatal().Str("direction", direction).Msg("unknown direction, want up, down or version")
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("no migrations to apply")
			return
		}
		log.Fatal().Err(err).Str("direction", direction).Msg("migration failed")
	}
	log.Info().Str("direction", direction).Msg("migrations applied")
}
