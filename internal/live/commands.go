package live

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pitchside/server/internal/clock"
	"github.com/pitchside/server/internal/events"
	"github.com/pitchside/server/internal/matches"
	"github.com/pitchside/server/internal/models"
	"github.com/rs/zerolog/log"
)

// Client-to-server message types.
const (
	CmdTimerRequest = "timer:request"
	CmdMatchRequest = "match:request"
	CmdSetExtraTime = "match:set-extra-time"
	CmdMakeGoal     = "match:make-goal"
)

// clockCommands maps wire message types onto state-machine commands.
var clockCommands = map[string]clock.Command{
	"match:pause":                 clock.CmdPause,
	"match:resume":                clock.CmdResume,
	"match:start-firstHalf":       clock.CmdStartFirstHalf,
	"match:start-secondHalf":      clock.CmdStartSecondHalf,
	"match:declare-halftime":      clock.CmdDeclareHalftime,
	"match:start-extraTime":       clock.CmdStartExtraTime,
	"match:start-penaltyShootout": clock.CmdStartPenaltyShootout,
	"match:finish":                clock.CmdFinish,
}

// stageSetting lists the commands that change which stage is shown, and so
// are followed by a match:info broadcast.
var stageSetting = map[clock.Command]bool{
	clock.CmdStartFirstHalf:       true,
	clock.CmdStartSecondHalf:      true,
	clock.CmdDeclareHalftime:      true,
	clock.CmdStartExtraTime:       true,
	clock.CmdStartPenaltyShootout: true,
	clock.CmdFinish:               true,
}

func (c *Coordinator) handleCommand(ctx context.Context, cmd *Command) {
	switch cmd.Type {
	case CmdTimerRequest:
		c.handleTimerRequest(ctx, cmd)
	case CmdMatchRequest:
		c.handleMatchRequest(ctx, cmd)
	case CmdSetExtraTime:
		c.handleSetExtraTime(cmd)
	case CmdMakeGoal:
		c.handleMakeGoal(ctx, cmd)
	default:
		if ccmd, ok := clockCommands[cmd.Type]; ok {
			c.handleClockCommand(ctx, cmd, ccmd)
			return
		}
		log.Warn().Str("cmd", cmd.Type).Msg("unknown command ignored")
		c.reply(cmd, events.Nack(cmd.Type, "unknown command"))
	}
}

// handleTimerRequest answers a single connection with the current clock
// state, derived exactly the way a broadcast would derive it.
func (c *Coordinator) handleTimerRequest(ctx context.Context, cmd *Command) {
	m, err := c.store.FindLive(ctx)
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd.Type).Msg("failed to load live match")
		c.reply(cmd, events.TimerStop())
		return
	}
	c.reply(cmd, c.timerEventFor(m))
}

func (c *Coordinator) handleMatchRequest(ctx context.Context, cmd *Command) {
	m, err := c.store.FindLive(ctx)
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd.Type).Msg("failed to load live match")
	}
	c.reply(cmd, matchInfo(m))
}

func (c *Coordinator) handleSetExtraTime(cmd *Command) {
	var payload struct {
		ExtraTime int `json:"extraTime"`
	}
	if err := unmarshalData(cmd.Data, &payload); err != nil || payload.ExtraTime <= 0 {
		c.reply(cmd, events.Nack(cmd.Type, "extraTime must be a positive number of minutes"))
		return
	}

	// Takes effect on the next start-extraTime; a countdown already running
	// keeps its original anchor and duration.
	c.cfg.ExtraTimeDuration = payload.ExtraTime * 60
	log.Info().Int("extra_time_sec", c.cfg.ExtraTimeDuration).Msg("extra time duration updated")
	c.reply(cmd, events.Ack(cmd.Type))
}

func (c *Coordinator) handleClockCommand(ctx context.Context, cmd *Command, ccmd clock.Command) {
	m, err := c.store.FindLive(ctx)
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd.Type).Msg("failed to load live match")
		c.reply(cmd, events.Nack(cmd.Type, "internal error"))
		return
	}
	if m == nil {
		c.reply(cmd, events.Nack(cmd.Type, "no live match"))
		return
	}

	now := c.clock.Now()
	upd, ev := clock.Advance(ccmd, m, now, c.cfg)

	if upd != nil {
		if err := c.store.UpdateLiveState(ctx, m.ID, stateUpdate(upd)); err != nil {
			log.Error().Err(err).Str("cmd", cmd.Type).Str("match_id", m.ID.String()).Msg("failed to persist state transition")
			c.reply(cmd, events.Nack(cmd.Type, "internal error"))
			return
		}
		upd.Apply(m)
	}

	switch ev.Signal {
	case clock.SignalNone:
		// Precondition miss; deliberately silent on the broadcast stream.
		log.Debug().Str("cmd", cmd.Type).Str("status", string(m.Status)).Str("stage", string(m.Stage)).Msg("command ignored")
		c.reply(cmd, events.Nack(cmd.Type, "precondition not met"))
		return
	case clock.SignalStart:
		c.broadcast(events.TimerStart(ev.Seconds))
	case clock.SignalPause:
		c.broadcast(events.TimerPause(ev.Seconds))
	case clock.SignalResume:
		c.broadcast(events.TimerResume(ev.Seconds))
	case clock.SignalStop:
		if upd == nil && ccmd == clock.CmdResume {
			// Resuming during halftime only reasserts the requester's
			// stopped clock; everyone else already shows it stopped.
			c.reply(cmd, events.TimerStop())
		} else {
			c.broadcast(events.TimerStop())
		}
	}

	if upd != nil && stageSetting[ccmd] {
		c.broadcast(matchInfo(m))
	}

	log.Info().
		Str("cmd", cmd.Type).
		Str("match_id", m.ID.String()).
		Str("status", string(m.Status)).
		Str("stage", string(m.Stage)).
		Msg("command applied")
	c.reply(cmd, events.Ack(cmd.Type))
}

func (c *Coordinator) handleMakeGoal(ctx context.Context, cmd *Command) {
	var payload struct {
		TeamID   uuid.UUID `json:"teamId"`
		PlayerID uuid.UUID `json:"playerId"`
	}
	if err := unmarshalData(cmd.Data, &payload); err != nil {
		c.reply(cmd, events.Nack(cmd.Type, "teamId and playerId are required"))
		return
	}

	m, err := c.store.FindLive(ctx)
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd.Type).Msg("failed to load live match")
		c.reply(cmd, events.Nack(cmd.Type, "internal error"))
		return
	}
	if m == nil {
		c.reply(cmd, events.Nack(cmd.Type, "no live match"))
		return
	}
	if m.Status != models.MatchStatusInProgress && m.Status != models.MatchStatusPaused {
		c.reply(cmd, events.Nack(cmd.Type, "match is not in play"))
		return
	}

	var side models.MatchSide
	switch payload.TeamID {
	case m.HomeTeamID:
		side = models.SideHome
	case m.AwayTeamID:
		side = models.SideAway
	default:
		c.reply(cmd, events.Nack(cmd.Type, "team is not playing in this match"))
		return
	}

	player, err := c.players.GetPlayer(ctx, payload.PlayerID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		c.reply(cmd, events.Nack(cmd.Type, "unknown player"))
		return
	case err != nil:
		log.Error().Err(err).Str("cmd", cmd.Type).Str("player_id", payload.PlayerID.String()).Msg("failed to load player")
		c.reply(cmd, events.Nack(cmd.Type, "internal error"))
		return
	}
	if player == nil || player.TeamID != payload.TeamID {
		c.reply(cmd, events.Nack(cmd.Type, "player does not belong to that team"))
		return
	}

	goal, err := c.store.AppendGoal(ctx, matches.AppendGoalRequest{
		MatchID:   m.ID,
		TeamID:    payload.TeamID,
		PlayerID:  payload.PlayerID,
		Side:      side,
		IsPenalty: m.Stage == models.StagePenaltyShootout,
	})
	if err != nil {
		log.Error().Err(err).Str("cmd", cmd.Type).Str("match_id", m.ID.String()).Msg("failed to persist goal")
		c.reply(cmd, events.Nack(cmd.Type, "internal error"))
		return
	}

	if side == models.SideHome {
		m.HomeGoals = append(m.HomeGoals, *goal)
	} else {
		m.AwayGoals = append(m.AwayGoals, *goal)
	}

	teamName := ""
	if player.Team != nil {
		teamName = player.Team.Name
	}

	log.Info().
		Str("match_id", m.ID.String()).
		Str("player", player.Name).
		Str("side", string(side)).
		Bool("penalty", goal.IsPenalty).
		Msg("goal recorded")

	c.broadcast(matchInfo(m))
	c.broadcast(events.GoalScored(player.Name, teamName))
	c.reply(cmd, events.Ack(cmd.Type))
}

// timerEventFor derives the timer signal a freshly connected viewer should
// render for the given live match (nil means no live match).
func (c *Coordinator) timerEventFor(m *models.Match) events.Event {
	remaining, counting := clock.Remaining(m, c.clock.Now(), c.cfg)
	if !counting {
		return events.TimerStop()
	}
	if m.Status == models.MatchStatusPaused {
		return events.TimerPause(remaining)
	}
	return events.TimerStart(remaining)
}

func stateUpdate(u *clock.Update) matches.StateUpdate {
	return matches.StateUpdate{
		Status:            u.Status,
		Stage:             u.Stage,
		StartTime:         u.StartTime,
		FirstHalfElapsed:  u.FirstHalfElapsed,
		SecondHalfElapsed: u.SecondHalfElapsed,
		ExtraTimeElapsed:  u.ExtraTimeElapsed,
	}
}
