package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitchside/server/internal/models"
)

// Repository implements match and goal data access operations.
// The live-match clock fields it persists are only ever written by the live
// coordinator, which serializes all writers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new matches repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateMatchRequest holds the fields for scheduling a match
type CreateMatchRequest struct {
	HomeTeamID  uuid.UUID `json:"home_team_id"`
	AwayTeamID  uuid.UUID `json:"away_team_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// UpdateMatchRequest holds the fields for rescheduling a match
type UpdateMatchRequest struct {
	HomeTeamID  *uuid.UUID `json:"home_team_id,omitempty"`
	AwayTeamID  *uuid.UUID `json:"away_team_id,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// StateUpdate is a partial update of the live-match state fields. Nil fields
// keep their stored value.
type StateUpdate struct {
	Status            *models.MatchStatus
	Stage             *models.MatchStage
	StartTime         *time.Time
	FirstHalfElapsed  *int
	SecondHalfElapsed *int
	ExtraTimeElapsed  *int
}

// AppendGoalRequest holds the fields for recording a goal
type AppendGoalRequest struct {
	MatchID   uuid.UUID
	TeamID    uuid.UUID
	PlayerID  uuid.UUID
	Side      models.MatchSide
	IsPenalty bool
}

const matchColumns = `
	m.id, m.home_team_id, m.away_team_id, m.scheduled_at, m.is_live,
	m.status, m.stage, m.start_time,
	m.first_half_elapsed, m.second_half_elapsed, m.extra_time_elapsed,
	m.created_at,
	ht.id, ht.name, ht.created_at,
	at.id, at.name, at.created_at`

const matchFrom = `
	FROM matches m
	JOIN teams ht ON ht.id = m.home_team_id
	JOIN teams at ON at.id = m.away_team_id`

// CreateMatch schedules a new fixture
func (r *Repository) CreateMatch(ctx context.Context, req CreateMatchRequest) (*models.Match, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO matches (id, home_team_id, away_team_id, scheduled_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		uuid.New(), req.HomeTeamID, req.AwayTeamID, req.ScheduledAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return r.GetMatch(ctx, id)
}

// GetMatch retrieves a match by ID with teams and goals attached
func (r *Repository) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+matchColumns+matchFrom+` WHERE m.id = $1`, id)

	match, err := scanMatch(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if err := r.loadGoals(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// ListMatches retrieves all matches, newest first, with teams and goals
func (r *Repository) ListMatches(ctx context.Context) ([]*models.Match, error) {
	rows, err := r.pool.Query(ctx, `SELECT`+matchColumns+matchFrom+` ORDER BY m.scheduled_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var result []*models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to list matches: %w", err)
		}
		result = append(result, match)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, match := range result {
		if err := r.loadGoals(ctx, match); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// UpdateMatch reschedules a match or swaps its contestants
func (r *Repository) UpdateMatch(ctx context.Context, id uuid.UUID, req UpdateMatchRequest) (*models.Match, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE matches
		 SET home_team_id = COALESCE($2, home_team_id),
		     away_team_id = COALESCE($3, away_team_id),
		     scheduled_at = COALESCE($4, scheduled_at)
		 WHERE id = $1`,
		id, req.HomeTeamID, req.AwayTeamID, req.ScheduledAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("failed to update match: %w", pgx.ErrNoRows)
	}
	return r.GetMatch(ctx, id)
}

// DeleteMatch deletes a match by ID
func (r *Repository) DeleteMatch(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// FindLive returns the current live match with teams and goals attached, or
// nil when no match is live.
func (r *Repository) FindLive(ctx context.Context) (*models.Match, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+matchColumns+matchFrom+` WHERE m.is_live LIMIT 1`)

	match, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find live match: %w", err)
	}
	if err := r.loadGoals(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// SetLive flips the live flag to the given match. Both writes run in one
// transaction so a concurrent switch can never leave two matches live.
func (r *Repository) SetLive(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin set-live transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE matches SET is_live = FALSE WHERE is_live`); err != nil {
		return fmt.Errorf("failed to clear live flags: %w", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE matches SET is_live = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to set match live: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// UpdateLiveState persists the clock fields a state-machine transition
// produced.
func (r *Repository) UpdateLiveState(ctx context.Context, id uuid.UUID, upd StateUpdate) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE matches
		 SET status              = COALESCE($2, status),
		     stage               = COALESCE($3, stage),
		     start_time          = COALESCE($4, start_time),
		     first_half_elapsed  = COALESCE($5, first_half_elapsed),
		     second_half_elapsed = COALESCE($6, second_half_elapsed),
		     extra_time_elapsed  = COALESCE($7, extra_time_elapsed)
		 WHERE id = $1`,
		id, upd.Status, upd.Stage, upd.StartTime,
		upd.FirstHalfElapsed, upd.SecondHalfElapsed, upd.ExtraTimeElapsed,
	)
	if err != nil {
		return fmt.Errorf("failed to update live state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update live state: %w", pgx.ErrNoRows)
	}
	return nil
}

// AppendGoal records a goal against one side of a match
func (r *Repository) AppendGoal(ctx context.Context, req AppendGoalRequest) (*models.Goal, error) {
	goal := models.Goal{
		ID:        uuid.New(),
		MatchID:   req.MatchID,
		TeamID:    req.TeamID,
		PlayerID:  req.PlayerID,
		Side:      req.Side,
		IsPenalty: req.IsPenalty,
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO goals (id, match_id, team_id, player_id, side, is_penalty)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		goal.ID, goal.MatchID, goal.TeamID, goal.PlayerID, goal.Side, goal.IsPenalty,
	).Scan(&goal.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append goal: %w", err)
	}
	return &goal, nil
}

func (r *Repository) loadGoals(ctx context.Context, match *models.Match) error {
	rows, err := r.pool.Query(ctx,
		`SELECT g.id, g.match_id, g.team_id, g.player_id, g.side, g.is_penalty, g.created_at,
		        p.id, p.name, p.team_id, p.created_at
		 FROM goals g
		 JOIN players p ON p.id = g.player_id
		 WHERE g.match_id = $1
		 ORDER BY g.created_at`,
		match.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load goals: %w", err)
	}
	defer rows.Close()

	match.HomeGoals = nil
	match.AwayGoals = nil
	for rows.Next() {
		var g models.Goal
		var p models.Player
		if err := rows.Scan(
			&g.ID, &g.MatchID, &g.TeamID, &g.PlayerID, &g.Side, &g.IsPenalty, &g.CreatedAt,
			&p.ID, &p.Name, &p.TeamID, &p.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to load goals: %w", err)
		}
		g.Player = &p
		if g.Side == models.SideHome {
			match.HomeGoals = append(match.HomeGoals, g)
		} else {
			match.AwayGoals = append(match.AwayGoals, g)
		}
	}
	return rows.Err()
}

func scanMatch(row pgx.Row) (*models.Match, error) {
	var m models.Match
	var home, away models.Team
	var stage *string
	if err := row.Scan(
		&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.ScheduledAt, &m.IsLive,
		&m.Status, &stage, &m.StartTime,
		&m.FirstHalfElapsed, &m.SecondHalfElapsed, &m.ExtraTimeElapsed,
		&m.CreatedAt,
		&home.ID, &home.Name, &home.CreatedAt,
		&away.ID, &away.Name, &away.CreatedAt,
	); err != nil {
		return nil, err
	}
	if stage != nil {
		m.Stage = models.MatchStage(*stage)
	}
	m.HomeTeam = &home
	m.AwayTeam = &away
	return &m, nil
}
