package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etros/scorebook/internal/store"
)

// StatRepository handles per-player stat line data access.
type StatRepository struct {
	db *store.Database
}

// NewStatRepository creates a new stat repository.
func NewStatRepository(db *store.Database) *StatRepository {
	return &StatRepository{db: db}
}

const statColumns = `stat_id, match_id, player_id, starter, minutes,
		field_goals_made, field_goals_attempted, two_points_made, two_points_attempted,
		three_points_made, three_points_attempted, free_throws_made, free_throws_attempted,
		offensive_rebounds, defensive_rebounds, assists, turnovers,
		steals, blocks, personal_fouls, fouls_drawn,
		plus_minus, efficiency, points, created_at, updated_at`

func scanStatRows(rows *sql.Rows) ([]*store.PlayerStatLine, error) {
	var stats []*store.PlayerStatLine
	for rows.Next() {
		s := &store.PlayerStatLine{}
		err := rows.Scan(
			&s.StatID, &s.MatchID, &s.PlayerID, &s.Starter, &s.Minutes,
			&s.FieldGoalsMade, &s.FieldGoalsAttempted,
			&s.TwoPointsMade, &s.TwoPointsAttempted,
			&s.ThreePointsMade, &s.ThreePointsAttempted,
			&s.FreeThrowsMade, &s.FreeThrowsAttempted,
			&s.OffensiveRebounds, &s.DefensiveRebounds, &s.Assists, &s.Turnovers,
			&s.Steals, &s.Blocks, &s.PersonalFouls, &s.FoulsDrawn,
			&s.PlusMinus, &s.Efficiency, &s.Points, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning stat line: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// CreateIfAbsent inserts a stat line unless the player already has one
// for this match. Returns created=false when a retried commit hits the
// existing row, which callers treat as success.
func (r *StatRepository) CreateIfAbsent(ctx context.Context, stat *store.PlayerStatLine) (bool, error) {
	query := `
		INSERT INTO player_stat_lines (
			match_id, player_id, starter, minutes,
			field_goals_made, field_goals_attempted, two_points_made, two_points_attempted,
			three_points_made, three_points_attempted, free_throws_made, free_throws_attempted,
			offensive_rebounds, defensive_rebounds, assists, turnovers,
			steals, blocks, personal_fouls, fouls_drawn,
			plus_minus, efficiency, points
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		ON CONFLICT (match_id, player_id) DO NOTHING
		RETURNING stat_id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		stat.MatchID, stat.PlayerID, stat.Starter, stat.Minutes,
		stat.FieldGoalsMade, stat.FieldGoalsAttempted,
		stat.TwoPointsMade, stat.TwoPointsAttempted,
		stat.ThreePointsMade, stat.ThreePointsAttempted,
		stat.FreeThrowsMade, stat.FreeThrowsAttempted,
		stat.OffensiveRebounds, stat.DefensiveRebounds, stat.Assists, stat.Turnovers,
		stat.Steals, stat.Blocks, stat.PersonalFouls, stat.FoulsDrawn,
		stat.PlusMinus, stat.Efficiency, stat.Points,
	).Scan(&stat.StatID)

	if errors.Is(err, sql.ErrNoRows) {
		existing, lookupErr := r.findByMatchPlayer(ctx, stat.MatchID, stat.PlayerID)
		if lookupErr != nil {
			return false, lookupErr
		}
		stat.StatID = existing.StatID
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("creating stat line: %w", err)
	}

	return true, nil
}

func (r *StatRepository) findByMatchPlayer(ctx context.Context, matchID, playerID int64) (*store.PlayerStatLine, error) {
	query := `SELECT ` + statColumns + ` FROM player_stat_lines WHERE match_id = $1 AND player_id = $2`

	rows, err := r.db.DB().QueryContext(ctx, query, matchID, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying stat line: %w", err)
	}
	defer rows.Close()

	stats, err := scanStatRows(rows)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("stat line for match %d player %d: %w", matchID, playerID, store.ErrNotFound)
	}

	return stats[0], nil
}

// GetByMatch returns all stat lines for a match ordered by points.
func (r *StatRepository) GetByMatch(ctx context.Context, matchID int64) ([]*store.PlayerStatLine, error) {
	query := `SELECT ` + statColumns + ` FROM player_stat_lines WHERE match_id = $1 ORDER BY points DESC`

	rows, err := r.db.DB().QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("querying match stat lines: %w", err)
	}
	defer rows.Close()

	return scanStatRows(rows)
}

// GetByPlayer returns a player's stat lines, most recent first.
func (r *StatRepository) GetByPlayer(ctx context.Context, playerID int64) ([]*store.PlayerStatLine, error) {
	query := `
		SELECT ` + statColumns + `
		FROM player_stat_lines
		WHERE player_id = $1
		ORDER BY stat_id DESC
	`

	rows, err := r.db.DB().QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying player stat lines: %w", err)
	}
	defer rows.Close()

	return scanStatRows(rows)
}
