package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/pitchside/server/internal/api"
	"github.com/pitchside/server/internal/dbconfig"
	"github.com/pitchside/server/internal/events"
	"github.com/pitchside/server/internal/gateway"
	"github.com/pitchside/server/internal/live"
	"github.com/pitchside/server/internal/matches"
	"github.com/pitchside/server/internal/players"
	"github.com/pitchside/server/internal/teams"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbCfg := dbconfig.NewConfigFromEnv()
	pool, err := dbCfg.Connect(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	log.Info().
		Str("database", dbCfg.Database).
		Str("port", cfg.Port).
		Int("half_duration", cfg.Clock.HalfDuration).
		Msg("starting pitchside server")

	// Repositories
	teamRepo := teams.NewRepository(pool)
	playerRepo := players.NewRepository(pool)
	matchRepo := matches.NewRepository(pool)

	// Event sinks: the websocket fan-out always, the NATS relay when
	// configured. The connection manager needs the coordinator and the
	// coordinator needs its sinks, so the manager is wired in afterwards.
	sinks := []events.Sink{}
	if cfg.NATSURL != "" {
		relay, err := events.NewNATSRelay(cfg.NATSURL, cfg.NATSPrefix)
		if err != nil {
			log.Fatal().Err(err).Str("nats_url", cfg.NATSURL).Msg("failed to connect to NATS")
		}
		defer relay.Close()
		sinks = append(sinks, relay)
		log.Info().Str("nats_url", cfg.NATSURL).Msg("NATS relay enabled")
	}

	coordinator := live.NewCoordinator(matchRepo, playerRepo, cfg.Clock, clockwork.NewRealClock(), sinks...)

	connManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig(), coordinator)
	coordinator.AddSink(connManager)

	// HTTP surface
	apiServer := api.NewServer(teamRepo, playerRepo, matchRepo, coordinator)
	wsHandler := gateway.NewWebSocketHandler(connManager)
	server := setupServer(cfg, apiServer, wsHandler)

	go coordinator.Run(ctx)
	go connManager.Start(ctx)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	cancel()

	// Give the coordinator and connection manager time to drain
	time.Sleep(1 * time.Second)

	log.Info().Msg("pitchside server shutdown complete")
}
