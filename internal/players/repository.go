package players

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitchside/server/internal/models"
)

// Repository implements player data access operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new players repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreatePlayerRequest holds the fields for registering a player
type CreatePlayerRequest struct {
	Name   string    `json:"name"`
	TeamID uuid.UUID `json:"team_id"`
}

// UpdatePlayerRequest holds the fields for updating a player
type UpdatePlayerRequest struct {
	Name   *string    `json:"name,omitempty"`
	TeamID *uuid.UUID `json:"team_id,omitempty"`
}

const playerWithTeam = `
	SELECT p.id, p.name, p.team_id, p.created_at, t.id, t.name, t.created_at
	FROM players p
	JOIN teams t ON t.id = p.team_id`

// CreatePlayer registers a new player on a team
func (r *Repository) CreatePlayer(ctx context.Context, req CreatePlayerRequest) (*models.Player, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO players (id, name, team_id) VALUES ($1, $2, $3) RETURNING id`,
		uuid.New(), req.Name, req.TeamID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return r.GetPlayer(ctx, id)
}

// GetPlayer retrieves a player by ID, with their team attached.
func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	row := r.pool.QueryRow(ctx, playerWithTeam+` WHERE p.id = $1`, id)

	player, err := scanPlayerWithTeam(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

// ListPlayers retrieves all players with their teams
func (r *Repository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := r.pool.Query(ctx, playerWithTeam+` ORDER BY t.name, p.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var result []models.Player
	for rows.Next() {
		player, err := scanPlayerWithTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to list players: %w", err)
		}
		result = append(result, *player)
	}
	return result, rows.Err()
}

// UpdatePlayer updates a player's name and/or team
func (r *Repository) UpdatePlayer(ctx context.Context, id uuid.UUID, req UpdatePlayerRequest) (*models.Player, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE players
		 SET name = COALESCE($2, name), team_id = COALESCE($3, team_id)
		 WHERE id = $1`,
		id, req.Name, req.TeamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("failed to update player: %w", pgx.ErrNoRows)
	}
	return r.GetPlayer(ctx, id)
}

// DeletePlayer deletes a player by ID
func (r *Repository) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanPlayerWithTeam(row pgx.Row) (*models.Player, error) {
	var p models.Player
	var t models.Team
	if err := row.Scan(&p.ID, &p.Name, &p.TeamID, &p.CreatedAt, &t.ID, &t.Name, &t.CreatedAt); err != nil {
		return nil, err
	}
	p.Team = &t
	return &p, nil
}
