package ingest

import (
	"github.com/etros/scorebook/internal/boxscore"
)

// ShootingAdjustment overrides one made/attempted pair.
type ShootingAdjustment struct {
	Made      *int `json:"made,omitempty"`
	Attempted *int `json:"attempted,omitempty"`
}

// PlayerAdjustment overrides fields of one roster row. Only fields
// that are set are applied.
type PlayerAdjustment struct {
	Number            *string             `json:"number,omitempty"`
	Minutes           *string             `json:"minutes,omitempty"`
	FieldGoals        *ShootingAdjustment `json:"field_goals,omitempty"`
	TwoPoints         *ShootingAdjustment `json:"two_points,omitempty"`
	ThreePoints       *ShootingAdjustment `json:"three_points,omitempty"`
	FreeThrows        *ShootingAdjustment `json:"free_throws,omitempty"`
	OffensiveRebounds *int                `json:"offensive_rebounds,omitempty"`
	DefensiveRebounds *int                `json:"defensive_rebounds,omitempty"`
	Assists           *int                `json:"assists,omitempty"`
	Turnovers         *int                `json:"turnovers,omitempty"`
	Steals            *int                `json:"steals,omitempty"`
	Blocks            *int                `json:"blocks,omitempty"`
	PersonalFouls     *int                `json:"personal_fouls,omitempty"`
	FoulsDrawn        *int                `json:"fouls_drawn,omitempty"`
	PlusMinus         *int                `json:"plus_minus,omitempty"`
	Efficiency        *int                `json:"efficiency,omitempty"`
	Points            *int                `json:"points,omitempty"`
}

// TeamAdjustment overrides fields of the team totals row.
type TeamAdjustment struct {
	FieldGoals        *ShootingAdjustment `json:"field_goals,omitempty"`
	TwoPoints         *ShootingAdjustment `json:"two_points,omitempty"`
	ThreePoints       *ShootingAdjustment `json:"three_points,omitempty"`
	FreeThrows        *ShootingAdjustment `json:"free_throws,omitempty"`
	OffensiveRebounds *int                `json:"offensive_rebounds,omitempty"`
	DefensiveRebounds *int                `json:"defensive_rebounds,omitempty"`
	Assists           *int                `json:"assists,omitempty"`
	Turnovers         *int                `json:"turnovers,omitempty"`
	Steals            *int                `json:"steals,omitempty"`
	Blocks            *int                `json:"blocks,omitempty"`
	Fouls             *int                `json:"fouls,omitempty"`
	Points            *int                `json:"points,omitempty"`
}

// MetadataAdjustment overrides header fields of the match.
type MetadataAdjustment struct {
	Venue         *string `json:"venue,omitempty"`
	GameNumber    *string `json:"game_number,omitempty"`
	Attendance    *int    `json:"attendance,omitempty"`
	EtrosScore    *int    `json:"etros_score,omitempty"`
	OpponentScore *int    `json:"opponent_score,omitempty"`
	Opponent      *string `json:"opponent,omitempty"`
}

// Adjustments are operator corrections applied to a decoded preview
// document before the commit sequence. Players are addressed by the
// parsed roster name.
type Adjustments struct {
	Players  map[string]PlayerAdjustment `json:"players,omitempty"`
	Team     *TeamAdjustment             `json:"team,omitempty"`
	Metadata *MetadataAdjustment         `json:"metadata,omitempty"`
}

// Apply overwrites the addressed fields of the document in place.
// Adjustments naming a player absent from the roster are ignored.
func (a *Adjustments) Apply(doc *boxscore.Document) {
	if a == nil {
		return
	}

	if len(a.Players) > 0 {
		players := doc.EtrosTeam().Players
		for i := range players {
			if adj, ok := a.Players[players[i].Name]; ok {
				applyPlayerAdjustment(&players[i], adj)
			}
		}
	}

	if a.Team != nil {
		applyTeamAdjustment(&doc.TeamTotals, a.Team)
	}

	if a.Metadata != nil {
		applyMetadataAdjustment(doc, a.Metadata)
	}
}

func applyShooting(target *boxscore.Shooting, adj *ShootingAdjustment) {
	if adj == nil {
		return
	}
	if adj.Made != nil {
		target.Made = *adj.Made
	}
	if adj.Attempted != nil {
		target.Attempted = *adj.Attempted
	}
}

func setInt(target *int, v *int) {
	if v != nil {
		*target = *v
	}
}

func setString(target *string, v *string) {
	if v != nil {
		*target = *v
	}
}

func applyPlayerAdjustment(row *boxscore.PlayerRow, adj PlayerAdjustment) {
	setString(&row.Number, adj.Number)
	setString(&row.Minutes, adj.Minutes)
	applyShooting(&row.FieldGoals, adj.FieldGoals)
	applyShooting(&row.TwoPoints, adj.TwoPoints)
	applyShooting(&row.ThreePoints, adj.ThreePoints)
	applyShooting(&row.FreeThrows, adj.FreeThrows)
	setInt(&row.OffensiveRebounds, adj.OffensiveRebounds)
	setInt(&row.DefensiveRebounds, adj.DefensiveRebounds)
	setInt(&row.Assists, adj.Assists)
	setInt(&row.Turnovers, adj.Turnovers)
	setInt(&row.Steals, adj.Steals)
	setInt(&row.Blocks, adj.Blocks)
	setInt(&row.PersonalFouls, adj.PersonalFouls)
	setInt(&row.FoulsDrawn, adj.FoulsDrawn)
	setInt(&row.PlusMinus, adj.PlusMinus)
	setInt(&row.Efficiency, adj.Efficiency)
	setInt(&row.Points, adj.Points)
}

func applyTeamAdjustment(totals *boxscore.TeamTotals, adj *TeamAdjustment) {
	applyShooting(&totals.FieldGoals, adj.FieldGoals)
	applyShooting(&totals.TwoPoints, adj.TwoPoints)
	applyShooting(&totals.ThreePoints, adj.ThreePoints)
	applyShooting(&totals.FreeThrows, adj.FreeThrows)
	setInt(&totals.OffensiveRebounds, adj.OffensiveRebounds)
	setInt(&totals.DefensiveRebounds, adj.DefensiveRebounds)
	setInt(&totals.Assists, adj.Assists)
	setInt(&totals.Turnovers, adj.Turnovers)
	setInt(&totals.Steals, adj.Steals)
	setInt(&totals.Blocks, adj.Blocks)
	setInt(&totals.Fouls, adj.Fouls)
	setInt(&totals.Points, adj.Points)
}

func applyMetadataAdjustment(doc *boxscore.Document, adj *MetadataAdjustment) {
	meta := &doc.Metadata
	setString(&meta.Venue, adj.Venue)
	setString(&meta.GameNumber, adj.GameNumber)
	setInt(&meta.Attendance, adj.Attendance)

	if adj.EtrosScore != nil {
		meta.EtrosScore = *adj.EtrosScore
		doc.EtrosTeam().Score = *adj.EtrosScore
	}
	if adj.OpponentScore != nil {
		meta.OpponentScore = *adj.OpponentScore
		doc.OpponentTeam().Score = *adj.OpponentScore
	}
	if adj.Opponent != nil {
		meta.Opponent = *adj.Opponent
		doc.OpponentTeam().Name = *adj.Opponent
	}
}
