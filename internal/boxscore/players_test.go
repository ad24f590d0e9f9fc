package boxscore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var rosterLines = []string{
	"Етрос 80 - 75 Висла",
	"Висла (ВИС)",
	"44 Someone Else 20:00 4/8 50.0 4/6 66.7 0/2 0.0 2/2 100.0 1 3 4 2 1 0 1 3 1 -5 8 10",
	"Етрос (ЕТР)",
	"No. Name Min Field Goals 2 Points 3 Points Free Throws",
	"M/A % M/A % M/A % M/A %",
	"* 4 Иванов (C) 25:30 7/13 53.8 5/8 62.5 2/5 40.0 6/7 85.7 2 5 7 4 3 2 1 2 5 10 25 22",
	"10 Петров 20:15 4/8 50.0 4/6 66.7 0/2 0.0 2/2 100.0 1 3 4 2 1 0 1 3 1 -5 8 10",
	"7 Георгиев DNP",
	"Coach: Стоянов",
	homeTotalsLine,
	awayTotalsLine,
}

func TestExtractPlayerRows_SectionAndFields(t *testing.T) {
	players := extractPlayerRows(rosterLines)
	require.Len(t, players, 3)

	captain := players[0]
	require.Equal(t, "4", captain.Number)
	require.Equal(t, "Иванов", captain.Name)
	require.True(t, captain.Starter)
	require.False(t, captain.DidNotPlay)
	require.Equal(t, "25:30", captain.Minutes)
	require.Equal(t, Shooting{Made: 7, Attempted: 13}, captain.FieldGoals)
	require.Equal(t, Shooting{Made: 5, Attempted: 8}, captain.TwoPoints)
	require.Equal(t, Shooting{Made: 2, Attempted: 5}, captain.ThreePoints)
	require.Equal(t, Shooting{Made: 6, Attempted: 7}, captain.FreeThrows)
	require.Equal(t, 2, captain.OffensiveRebounds)
	require.Equal(t, 5, captain.DefensiveRebounds)
	require.Equal(t, 4, captain.Assists)
	require.Equal(t, 3, captain.Turnovers)
	require.Equal(t, 2, captain.Steals)
	require.Equal(t, 1, captain.Blocks)
	require.Equal(t, 2, captain.PersonalFouls)
	require.Equal(t, 5, captain.FoulsDrawn)
	require.Equal(t, 10, captain.PlusMinus)
	require.Equal(t, 25, captain.Efficiency)
	require.Equal(t, 22, captain.Points)

	bench := players[1]
	require.Equal(t, "10", bench.Number)
	require.Equal(t, "Петров", bench.Name)
	require.False(t, bench.Starter)
	require.Equal(t, -5, bench.PlusMinus)
	require.Equal(t, 10, bench.Points)
}

func TestExtractPlayerRows_OpponentRosterIgnored(t *testing.T) {
	players := extractPlayerRows(rosterLines)

	for _, p := range players {
		require.NotEqual(t, "Someone Else", p.Name)
	}
}

func TestExtractPlayerRows_DNP(t *testing.T) {
	players := extractPlayerRows(rosterLines)

	dnp := players[2]
	require.True(t, dnp.DidNotPlay)
	require.Equal(t, "7", dnp.Number)
	require.Equal(t, "Георгиев", dnp.Name)
	require.Empty(t, dnp.Minutes)
	require.Zero(t, dnp.Points)
	require.Equal(t, Shooting{}, dnp.FieldGoals)
}

func TestExtractPlayerRows_FlushAtStreamEnd(t *testing.T) {
	lines := []string{
		"Етрос (ЕТР)",
		"5 Димитров 10:00 1/2 50.0 1/2 50.0 0/0 0.0 0/0 0.0 0 1 1 0 0 0 0 1 0 2 2 2",
	}

	players := extractPlayerRows(lines)
	require.Len(t, players, 1)
	require.Equal(t, "Димитров", players[0].Name)
	require.Equal(t, 2, players[0].Points)
}

func TestExtractPlayerRows_BadFieldDefaultsToZero(t *testing.T) {
	lines := []string{
		"Етрос (ЕТР)",
		"5 Димитров 10:00 1/2 50.0 x/y 50.0 0/0 0.0 0/0 0.0 0 1 1 z 0 0 0 1 0 2 2 2",
	}

	players := extractPlayerRows(lines)
	require.Len(t, players, 1)
	require.Equal(t, Shooting{Made: 1, Attempted: 2}, players[0].FieldGoals)
	require.Equal(t, Shooting{}, players[0].TwoPoints)
	require.Zero(t, players[0].Assists)
	require.Equal(t, 2, players[0].Points)
}

func TestExtractPlayerRows_NoSection(t *testing.T) {
	lines := []string{
		"Висла (ВИС)",
		"44 Someone Else 20:00 4/8 50.0 4/6 66.7 0/2 0.0 2/2 100.0 1 3 4 2 1 0 1 3 1 -5 8 10",
	}

	require.Empty(t, extractPlayerRows(lines))
}
