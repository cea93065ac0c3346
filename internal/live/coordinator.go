// Package live holds the session coordinator that drives the one live match.
//
// All state-mutating commands funnel through a single consumer goroutine, so
// the read-compute-write sequence against the live match record is never
// interleaved. That ordering guarantee is what keeps the wall-clock anchor
// and elapsed-time bookkeeping consistent without per-row locking.
package live

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pitchside/server/internal/clock"
	"github.com/pitchside/server/internal/events"
	"github.com/pitchside/server/internal/matches"
	"github.com/pitchside/server/internal/models"
	"github.com/rs/zerolog/log"
)

// MatchStore is what the coordinator needs from match persistence.
type MatchStore interface {
	FindLive(ctx context.Context) (*models.Match, error)
	SetLive(ctx context.Context, id uuid.UUID) error
	UpdateLiveState(ctx context.Context, id uuid.UUID, upd matches.StateUpdate) error
	AppendGoal(ctx context.Context, req matches.AppendGoalRequest) (*models.Goal, error)
}

// PlayerStore resolves scorers for goal attribution and notifications.
type PlayerStore interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
}

// Command is a client message routed in from the realtime gateway.
// Reply, when set, delivers events only to the connection that sent the
// command (state pulls and acks); broadcasts go to every sink.
type Command struct {
	Type  string
	Data  json.RawMessage
	Reply func(events.Event)
}

type setLiveRequest struct {
	matchID uuid.UUID
	resp    chan error
}

type task struct {
	cmd     *Command
	setLive *setLiveRequest
}

// Coordinator serializes every command against the single live match.
type Coordinator struct {
	store   MatchStore
	players PlayerStore
	sinks   []events.Sink
	clock   clockwork.Clock
	cfg     clock.Config

	tasks chan task
}

// NewCoordinator creates a coordinator. cfg supplies the period durations;
// sinks receive every broadcast event (websocket fan-out, NATS relay).
func NewCoordinator(store MatchStore, players PlayerStore, cfg clock.Config, clk clockwork.Clock, sinks ...events.Sink) *Coordinator {
	return &Coordinator{
		store:   store,
		players: players,
		sinks:   sinks,
		clock:   clk,
		cfg:     cfg,
		tasks:   make(chan task, 64),
	}
}

// AddSink registers another broadcast sink. Not safe once Run has started;
// main wires all sinks before launching the loop.
func (c *Coordinator) AddSink(s events.Sink) {
	c.sinks = append(c.sinks, s)
}

// Run consumes commands one at a time until the context is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	log.Info().
		Int("half_duration", c.cfg.HalfDuration).
		Int("extra_time_duration", c.cfg.ExtraTimeDuration).
		Msg("live coordinator started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("live coordinator shutting down")
			return
		case t := <-c.tasks:
			switch {
			case t.cmd != nil:
				c.handleCommand(ctx, t.cmd)
			case t.setLive != nil:
				t.setLive.resp <- c.handleSetLive(ctx, t.setLive.matchID)
			}
		}
	}
}

// Dispatch queues a client command for the coordinator loop. It blocks only
// if the queue is full, preserving per-connection arrival order.
func (c *Coordinator) Dispatch(ctx context.Context, cmd Command) error {
	select {
	case c.tasks <- task{cmd: &cmd}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetLive flips the live flag to the given match and waits for the result.
// It runs on the coordinator loop so it cannot race an in-flight command.
func (c *Coordinator) SetLive(ctx context.Context, matchID uuid.UUID) error {
	req := setLiveRequest{matchID: matchID, resp: make(chan error, 1)}
	select {
	case c.tasks <- task{setLive: &req}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.resp:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) broadcast(ev events.Event) {
	for _, sink := range c.sinks {
		sink.Publish(ev)
	}
}

func (c *Coordinator) reply(cmd *Command, ev events.Event) {
	if cmd.Reply != nil {
		cmd.Reply(ev)
	}
}

func (c *Coordinator) handleSetLive(ctx context.Context, matchID uuid.UUID) error {
	if err := c.store.SetLive(ctx, matchID); err != nil {
		return err
	}

	log.Info().Str("match_id", matchID.String()).Msg("match set live")

	// Push the new scoreboard to everyone already connected; late joiners
	// pull the same state via match:request / timer:request.
	m, err := c.store.FindLive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload live match after switch")
		return nil
	}
	c.broadcast(matchInfo(m))
	c.broadcast(c.timerEventFor(m))
	return nil
}
