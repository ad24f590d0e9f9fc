package store

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Match lifecycle states.
const (
	MatchStatusUpcoming = "upcoming"
	MatchStatusFinished = "finished"
)

// Match results, from the club's point of view.
const (
	ResultWin  = "Win"
	ResultLoss = "Loss"
)

// Upload processing states.
const (
	UploadStatusPending    = "pending"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

// Player is a club roster member. Name is the stable identity key; the
// jersey number is corrected opportunistically as new box scores come
// in. StatIDs is the history of stat lines recorded for the player.
type Player struct {
	PlayerID  int64         `json:"player_id" db:"player_id"`
	Name      string        `json:"name" db:"name"`
	Number    string        `json:"number" db:"number"`
	BornYear  int           `json:"born_year" db:"born_year"`
	StatIDs   pq.Int64Array `json:"stat_ids" db:"stat_ids"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// Match is one club fixture, keyed by (match_date, opponent). Team
// totals are authoritative for the club side only; the opponent's
// roster is never parsed.
type Match struct {
	MatchID       int64          `json:"match_id" db:"match_id"`
	MatchDate     time.Time      `json:"match_date" db:"match_date"`
	TipOff        sql.NullTime   `json:"tip_off,omitempty" db:"tip_off"`
	Opponent      string         `json:"opponent" db:"opponent"`
	Venue         sql.NullString `json:"venue,omitempty" db:"venue"`
	HomeIsEtros   bool           `json:"home_is_etros" db:"home_is_etros"`
	Status        string         `json:"status" db:"status"`
	OurScore      sql.NullInt32  `json:"our_score,omitempty" db:"our_score"`
	OpponentScore sql.NullInt32  `json:"opponent_score,omitempty" db:"opponent_score"`
	Result        sql.NullString `json:"result,omitempty" db:"result"`

	FieldGoalsMade        int `json:"field_goals_made" db:"field_goals_made"`
	FieldGoalsAttempted   int `json:"field_goals_attempted" db:"field_goals_attempted"`
	TwoPointsMade         int `json:"two_points_made" db:"two_points_made"`
	TwoPointsAttempted    int `json:"two_points_attempted" db:"two_points_attempted"`
	ThreePointsMade       int `json:"three_points_made" db:"three_points_made"`
	ThreePointsAttempted  int `json:"three_points_attempted" db:"three_points_attempted"`
	FreeThrowsMade        int `json:"free_throws_made" db:"free_throws_made"`
	FreeThrowsAttempted   int `json:"free_throws_attempted" db:"free_throws_attempted"`
	OffensiveRebounds     int `json:"offensive_rebounds" db:"offensive_rebounds"`
	DefensiveRebounds     int `json:"defensive_rebounds" db:"defensive_rebounds"`
	TotalAssists          int `json:"total_assists" db:"total_assists"`
	TotalTurnovers        int `json:"total_turnovers" db:"total_turnovers"`
	TotalSteals           int `json:"total_steals" db:"total_steals"`
	TotalBlocks           int `json:"total_blocks" db:"total_blocks"`
	TotalFouls            int `json:"total_fouls" db:"total_fouls"`
	TotalPoints           int `json:"total_points" db:"total_points"`

	StatIDs   pq.Int64Array `json:"stat_ids" db:"stat_ids"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// PlayerStatLine is one player's performance in one match. At most one
// line may exist per (match, player); the store enforces it.
type PlayerStatLine struct {
	StatID               int64     `json:"stat_id" db:"stat_id"`
	MatchID              int64     `json:"match_id" db:"match_id"`
	PlayerID             int64     `json:"player_id" db:"player_id"`
	Starter              bool      `json:"starter" db:"starter"`
	Minutes              string    `json:"minutes" db:"minutes"`
	FieldGoalsMade       int       `json:"field_goals_made" db:"field_goals_made"`
	FieldGoalsAttempted  int       `json:"field_goals_attempted" db:"field_goals_attempted"`
	TwoPointsMade        int       `json:"two_points_made" db:"two_points_made"`
	TwoPointsAttempted   int       `json:"two_points_attempted" db:"two_points_attempted"`
	ThreePointsMade      int       `json:"three_points_made" db:"three_points_made"`
	ThreePointsAttempted int       `json:"three_points_attempted" db:"three_points_attempted"`
	FreeThrowsMade       int       `json:"free_throws_made" db:"free_throws_made"`
	FreeThrowsAttempted  int       `json:"free_throws_attempted" db:"free_throws_attempted"`
	OffensiveRebounds    int       `json:"offensive_rebounds" db:"offensive_rebounds"`
	DefensiveRebounds    int       `json:"defensive_rebounds" db:"defensive_rebounds"`
	Assists              int       `json:"assists" db:"assists"`
	Turnovers            int       `json:"turnovers" db:"turnovers"`
	Steals               int       `json:"steals" db:"steals"`
	Blocks               int       `json:"blocks" db:"blocks"`
	PersonalFouls        int       `json:"personal_fouls" db:"personal_fouls"`
	FoulsDrawn           int       `json:"fouls_drawn" db:"fouls_drawn"`
	PlusMinus            int       `json:"plus_minus" db:"plus_minus"`
	Efficiency           int       `json:"efficiency" db:"efficiency"`
	Points               int       `json:"points" db:"points"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// Upload tracks one box-score ingestion attempt. The (match_date,
// opponent) pair is unique and serves as the duplicate-detection key,
// independent of the match data the upload produces.
type Upload struct {
	UploadID     string         `json:"upload_id" db:"upload_id"`
	FileName     string         `json:"file_name" db:"file_name"`
	UploadedBy   string         `json:"uploaded_by" db:"uploaded_by"`
	MatchDate    time.Time      `json:"match_date" db:"match_date"`
	Opponent     string         `json:"opponent" db:"opponent"`
	Status       string         `json:"status" db:"status"`
	ErrorMessage sql.NullString `json:"error_message,omitempty" db:"error_message"`
	MatchID      sql.NullInt64  `json:"match_id,omitempty" db:"match_id"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}
