// Package boxscore reconstructs structured match statistics from the
// positioned text of a FIBA box-score document. The pipeline is
// layout reconstruction -> metadata -> team totals -> player rows; only
// the Етрос roster is parsed in full.
package boxscore

import (
	"fmt"
	"time"
)

// Fixed identity of the club this service tracks. The box-score layout
// names the roster section with the full name and the bracketed
// federation abbreviation.
const (
	TargetTeamName         = "Етрос"
	TargetTeamAbbreviation = "(ЕТР)"
)

// Token is one positioned text fragment produced by the extraction
// layer. Y grows downward: smaller Y means closer to the top of the page.
type Token struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Shooting is a made/attempted pair for one shot category.
type Shooting struct {
	Made      int `json:"made"`
	Attempted int `json:"attempted"`
}

// MatchMetadata is the header information of a box score.
type MatchMetadata struct {
	Date          time.Time `json:"date"`
	Venue         string    `json:"venue"`
	GameNumber    string    `json:"game_number"`
	Attendance    int       `json:"attendance"`
	Duration      string    `json:"duration"`
	HomeIsEtros   bool      `json:"home_is_etros"`
	Opponent      string    `json:"opponent"`
	EtrosScore    int       `json:"etros_score"`
	OpponentScore int       `json:"opponent_score"`
}

// TeamTotals is the aggregate statistics row for one team.
type TeamTotals struct {
	FieldGoals        Shooting `json:"field_goals"`
	TwoPoints         Shooting `json:"two_points"`
	ThreePoints       Shooting `json:"three_points"`
	FreeThrows        Shooting `json:"free_throws"`
	OffensiveRebounds int      `json:"offensive_rebounds"`
	DefensiveRebounds int      `json:"defensive_rebounds"`
	Assists           int      `json:"assists"`
	Turnovers         int      `json:"turnovers"`
	Steals            int      `json:"steals"`
	Blocks            int      `json:"blocks"`
	Fouls             int      `json:"fouls"`
	Points            int      `json:"points"`
}

// PlayerRow is one parsed roster line. Rows flagged DidNotPlay carry
// only Number and Name.
type PlayerRow struct {
	Number            string   `json:"number"`
	Name              string   `json:"name"`
	Starter           bool     `json:"starter"`
	DidNotPlay        bool     `json:"did_not_play"`
	Minutes           string   `json:"minutes,omitempty"`
	FieldGoals        Shooting `json:"field_goals"`
	TwoPoints         Shooting `json:"two_points"`
	ThreePoints       Shooting `json:"three_points"`
	FreeThrows        Shooting `json:"free_throws"`
	OffensiveRebounds int      `json:"offensive_rebounds"`
	DefensiveRebounds int      `json:"defensive_rebounds"`
	Assists           int      `json:"assists"`
	Turnovers         int      `json:"turnovers"`
	Steals            int      `json:"steals"`
	Blocks            int      `json:"blocks"`
	PersonalFouls     int      `json:"personal_fouls"`
	FoulsDrawn        int      `json:"fouls_drawn"`
	PlusMinus         int      `json:"plus_minus"`
	Efficiency        int      `json:"efficiency"`
	Points            int      `json:"points"`
}

// TeamSide is one side of the match. Players is populated only for the
// Етрос side.
type TeamSide struct {
	Name    string      `json:"name"`
	Score   int         `json:"score"`
	Players []PlayerRow `json:"players,omitempty"`
}

// Document is the full parsed box score. It is transient: produced
// fresh on every parse and either persisted by the ingest workflow or
// round-tripped through a preview token.
type Document struct {
	Metadata   MatchMetadata `json:"metadata"`
	HomeTeam   TeamSide      `json:"home_team"`
	AwayTeam   TeamSide      `json:"away_team"`
	TeamTotals TeamTotals    `json:"team_stats"`
}

// EtrosTeam returns the side carrying the parsed roster.
func (d *Document) EtrosTeam() *TeamSide {
	if d.Metadata.HomeIsEtros {
		return &d.HomeTeam
	}
	return &d.AwayTeam
}

// OpponentTeam returns the side without a parsed roster.
func (d *Document) OpponentTeam() *TeamSide {
	if d.Metadata.HomeIsEtros {
		return &d.AwayTeam
	}
	return &d.HomeTeam
}

// Parse turns the raw token stream of one document into a Document.
// Metadata problems abort the parse; a malformed totals row degrades to
// zeroed totals since the per-player data is what the workflow keys on.
func Parse(tokens []Token) (*Document, error) {
	lines := ReconstructLines(tokens)

	meta, err := extractMetadata(lines)
	if err != nil {
		return nil, fmt.Errorf("parsing box score: %w", err)
	}

	totals := extractTeamTotals(lines, meta.HomeIsEtros)
	players := extractPlayerRows(lines)

	doc := &Document{
		Metadata:   meta,
		TeamTotals: totals,
	}

	etros := TeamSide{Name: TargetTeamName, Score: meta.EtrosScore, Players: players}
	opponent := TeamSide{Name: meta.Opponent, Score: meta.OpponentScore}

	if meta.HomeIsEtros {
		doc.HomeTeam = etros
		doc.AwayTeam = opponent
	} else {
		doc.HomeTeam = opponent
		doc.AwayTeam = etros
	}

	return doc, nil
}
