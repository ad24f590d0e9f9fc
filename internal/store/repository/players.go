package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etros/scorebook/internal/store"
)

// PlayerRepository handles player data access.
type PlayerRepository struct {
	db *store.Database
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = `player_id, name, number, born_year, stat_ids, created_at, updated_at`

// GetByID finds a player by ID.
func (r *PlayerRepository) GetByID(ctx context.Context, playerID int64) (*store.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_id = $1`

	player := &store.Player{}
	err := r.db.DB().QueryRowContext(ctx, query, playerID).Scan(
		&player.PlayerID, &player.Name, &player.Number, &player.BornYear,
		&player.StatIDs, &player.CreatedAt, &player.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %d: %w", playerID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}

	return player, nil
}

// GetByName finds a player by exact name. Name is the stable identity
// key for roster reconciliation.
func (r *PlayerRepository) GetByName(ctx context.Context, name string) (*store.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE name = $1`

	player := &store.Player{}
	err := r.db.DB().QueryRowContext(ctx, query, name).Scan(
		&player.PlayerID, &player.Name, &player.Number, &player.BornYear,
		&player.StatIDs, &player.CreatedAt, &player.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %q: %w", name, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}

	return player, nil
}

// GetAll returns all players ordered by name.
func (r *PlayerRepository) GetAll(ctx context.Context) ([]*store.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY name`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	var players []*store.Player
	for rows.Next() {
		player := &store.Player{}
		err := rows.Scan(
			&player.PlayerID, &player.Name, &player.Number, &player.BornYear,
			&player.StatIDs, &player.CreatedAt, &player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, player)
	}

	return players, rows.Err()
}

// Create inserts a new player and fills in the generated ID.
func (r *PlayerRepository) Create(ctx context.Context, player *store.Player) error {
	query := `
		INSERT INTO players (name, number, born_year)
		VALUES ($1, $2, $3)
		RETURNING player_id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		player.Name, player.Number, player.BornYear,
	).Scan(&player.PlayerID)

	if err != nil {
		return fmt.Errorf("creating player: %w", err)
	}

	return nil
}

// UpdateNumber corrects a player's jersey number.
func (r *PlayerRepository) UpdateNumber(ctx context.Context, playerID int64, number string) error {
	query := `UPDATE players SET number = $2, updated_at = NOW() WHERE player_id = $1`

	if _, err := r.db.DB().ExecContext(ctx, query, playerID, number); err != nil {
		return fmt.Errorf("updating player number: %w", err)
	}

	return nil
}

// AppendStatRef adds a stat line to the player's history. The append
// is a no-op when the reference is already present, so a retried
// commit does not duplicate history entries.
func (r *PlayerRepository) AppendStatRef(ctx context.Context, playerID int64, statID int64) error {
	query := `
		UPDATE players
		SET stat_ids = array_append(stat_ids, $2), updated_at = NOW()
		WHERE player_id = $1 AND NOT (stat_ids @> ARRAY[$2]::bigint[])
	`

	if _, err := r.db.DB().ExecContext(ctx, query, playerID, statID); err != nil {
		return fmt.Errorf("appending player stat ref: %w", err)
	}

	return nil
}
