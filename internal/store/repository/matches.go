package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/etros/scorebook/internal/store"
)

// MatchRepository handles match data access.
type MatchRepository struct {
	db *store.Database
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db *store.Database) *MatchRepository {
	return &MatchRepository{db: db}
}

const matchColumns = `match_id, match_date, tip_off, opponent, venue, home_is_etros, status,
		our_score, opponent_score, result,
		field_goals_made, field_goals_attempted, two_points_made, two_points_attempted,
		three_points_made, three_points_attempted, free_throws_made, free_throws_attempted,
		offensive_rebounds, defensive_rebounds, total_assists, total_turnovers,
		total_steals, total_blocks, total_fouls, total_points,
		stat_ids, created_at, updated_at`

func scanMatch(row interface{ Scan(...any) error }) (*store.Match, error) {
	m := &store.Match{}
	err := row.Scan(
		&m.MatchID, &m.MatchDate, &m.TipOff, &m.Opponent, &m.Venue, &m.HomeIsEtros, &m.Status,
		&m.OurScore, &m.OpponentScore, &m.Result,
		&m.FieldGoalsMade, &m.FieldGoalsAttempted, &m.TwoPointsMade, &m.TwoPointsAttempted,
		&m.ThreePointsMade, &m.ThreePointsAttempted, &m.FreeThrowsMade, &m.FreeThrowsAttempted,
		&m.OffensiveRebounds, &m.DefensiveRebounds, &m.TotalAssists, &m.TotalTurnovers,
		&m.TotalSteals, &m.TotalBlocks, &m.TotalFouls, &m.TotalPoints,
		&m.StatIDs, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetByID finds a match by ID.
func (r *MatchRepository) GetByID(ctx context.Context, matchID int64) (*store.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE match_id = $1`

	match, err := scanMatch(r.db.DB().QueryRowContext(ctx, query, matchID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %d: %w", matchID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying match: %w", err)
	}

	return match, nil
}

// FindByDateOpponent finds a match by its natural key. The match date
// is compared on the calendar day, ignoring tip-off time.
func (r *MatchRepository) FindByDateOpponent(ctx context.Context, matchDate string, opponent string) (*store.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE match_date = $1 AND opponent = $2`

	match, err := scanMatch(r.db.DB().QueryRowContext(ctx, query, matchDate, opponent))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %s vs %s: %w", matchDate, opponent, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying match: %w", err)
	}

	return match, nil
}

// List returns matches ordered by date, most recent first.
func (r *MatchRepository) List(ctx context.Context, limit int) ([]*store.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches ORDER BY match_date DESC LIMIT $1`

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var matches []*store.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}

// CreateIfAbsent inserts a match unless one already exists for the
// same date and opponent. The insert and the existence check are a
// single statement, so two concurrent ingests for the same game
// cannot both create a row. Returns the surviving row either way.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, match *store.Match) (*store.Match, bool, error) {
	query := `
		INSERT INTO matches (match_date, tip_off, opponent, venue, home_is_etros, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (match_date, opponent) DO NOTHING
		RETURNING match_id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		match.MatchDate, match.TipOff, match.Opponent, match.Venue,
		match.HomeIsEtros, match.Status,
	).Scan(&match.MatchID)

	if errors.Is(err, sql.ErrNoRows) {
		existing, err := r.FindByDateOpponent(ctx, match.MatchDate.Format("2006-01-02"), match.Opponent)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("creating match: %w", err)
	}

	return match, true, nil
}

// Finalize records the outcome and team totals of a finished match.
func (r *MatchRepository) Finalize(ctx context.Context, match *store.Match) error {
	query := `
		UPDATE matches SET
			tip_off = $2, venue = COALESCE($3, venue), home_is_etros = $4,
			status = $5, our_score = $6, opponent_score = $7, result = $8,
			field_goals_made = $9, field_goals_attempted = $10,
			two_points_made = $11, two_points_attempted = $12,
			three_points_made = $13, three_points_attempted = $14,
			free_throws_made = $15, free_throws_attempted = $16,
			offensive_rebounds = $17, defensive_rebounds = $18,
			total_assists = $19, total_turnovers = $20,
			total_steals = $21, total_blocks = $22, total_fouls = $23, total_points = $24,
			updated_at = NOW()
		WHERE match_id = $1
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		match.MatchID, match.TipOff, match.Venue, match.HomeIsEtros,
		match.Status, match.OurScore, match.OpponentScore, match.Result,
		match.FieldGoalsMade, match.FieldGoalsAttempted,
		match.TwoPointsMade, match.TwoPointsAttempted,
		match.ThreePointsMade, match.ThreePointsAttempted,
		match.FreeThrowsMade, match.FreeThrowsAttempted,
		match.OffensiveRebounds, match.DefensiveRebounds,
		match.TotalAssists, match.TotalTurnovers,
		match.TotalSteals, match.TotalBlocks, match.TotalFouls, match.TotalPoints,
	)
	if err != nil {
		return fmt.Errorf("finalizing match: %w", err)
	}

	return nil
}

// AppendStatRef adds a stat line to the match's stat list, skipping
// references that are already present.
func (r *MatchRepository) AppendStatRef(ctx context.Context, matchID int64, statID int64) error {
	query := `
		UPDATE matches
		SET stat_ids = array_append(stat_ids, $2), updated_at = NOW()
		WHERE match_id = $1 AND NOT (stat_ids @> ARRAY[$2]::bigint[])
	`

	if _, err := r.db.DB().ExecContext(ctx, query, matchID, statID); err != nil {
		return fmt.Errorf("appending match stat ref: %w", err)
	}

	return nil
}
