package teams

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitchside/server/internal/models"
)

// Repository implements team data access operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new teams repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateTeamRequest holds the fields for creating a team
type CreateTeamRequest struct {
	Name string `json:"name"`
}

// UpdateTeamRequest holds the fields for renaming a team
type UpdateTeamRequest struct {
	Name string `json:"name"`
}

const teamColumns = `id, name, created_at`

// CreateTeam creates a new team
func (r *Repository) CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO teams (id, name) VALUES ($1, $2) RETURNING `+teamColumns,
		uuid.New(), req.Name,
	)

	team, err := scanTeam(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

// GetTeam retrieves a team by ID, including its squad.
func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = $1`, id,
	)

	team, err := scanTeam(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	if err := r.loadPlayers(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// ListTeams retrieves all teams
func (r *Repository) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+teamColumns+` FROM teams ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to list teams: %w", err)
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}

// UpdateTeam renames an existing team
func (r *Repository) UpdateTeam(ctx context.Context, id uuid.UUID, req UpdateTeamRequest) (*models.Team, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE teams SET name = $2 WHERE id = $1 RETURNING `+teamColumns,
		id, req.Name,
	)

	team, err := scanTeam(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

// DeleteTeam deletes a team by ID
func (r *Repository) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) loadPlayers(ctx context.Context, team *models.Team) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, team_id, created_at FROM players WHERE team_id = $1 ORDER BY name`,
		team.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load players for team: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.TeamID, &p.CreatedAt); err != nil {
			return fmt.Errorf("failed to load players for team: %w", err)
		}
		team.Players = append(team.Players, p)
	}
	return rows.Err()
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
