package boxscore

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

// Full-game duration token on a totals row. Regular competitions play
// 200:00 of player minutes, the overtime-heavy cup format prints 225:00.
var fullGameDurations = []string{"200:00", "225:00"}

// Field layout of a totals row, as offsets from the duration token.
// Every made/attempted split is followed by a percentage column that is
// skipped; total rebounds (offset 11) is derivable and skipped too.
// Points is the final token of the row.
var totalsSplitLayout = []struct {
	offset int
	field  func(*TeamTotals) *Shooting
}{
	{1, func(t *TeamTotals) *Shooting { return &t.FieldGoals }},
	{3, func(t *TeamTotals) *Shooting { return &t.TwoPoints }},
	{5, func(t *TeamTotals) *Shooting { return &t.ThreePoints }},
	{7, func(t *TeamTotals) *Shooting { return &t.FreeThrows }},
}

var totalsCountLayout = []struct {
	offset int
	field  func(*TeamTotals) *int
}{
	{9, func(t *TeamTotals) *int { return &t.OffensiveRebounds }},
	{10, func(t *TeamTotals) *int { return &t.DefensiveRebounds }},
	{12, func(t *TeamTotals) *int { return &t.Assists }},
	{13, func(t *TeamTotals) *int { return &t.Turnovers }},
	{14, func(t *TeamTotals) *int { return &t.Steals }},
	{15, func(t *TeamTotals) *int { return &t.Blocks }},
	{16, func(t *TeamTotals) *int { return &t.Fouls }},
}

// extractTeamTotals locates the two aggregate rows and slices the
// Етрос one. The rows carry no team name: they appear in the same
// left-to-right order as the score line, so index 0 is the home team.
// Totals are secondary to the per-player data, so any malformed row
// degrades to zeroed totals instead of failing the parse.
func extractTeamTotals(lines []string, homeIsEtros bool) TeamTotals {
	var totalsLines []string
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "Totals") {
			continue
		}
		for _, dur := range fullGameDurations {
			if strings.Contains(line, dur) {
				totalsLines = append(totalsLines, line)
				break
			}
		}
	}

	if len(totalsLines) != 2 {
		log.Printf("[boxscore] expected 2 totals rows, found %d; keeping zeroed team totals", len(totalsLines))
		return TeamTotals{}
	}

	selected := totalsLines[1]
	if homeIsEtros {
		selected = totalsLines[0]
	}

	totals, err := parseTotalsLine(selected)
	if err != nil {
		log.Printf("[boxscore] parsing totals row: %v; keeping zeroed team totals", err)
		return TeamTotals{}
	}
	return totals
}

func parseTotalsLine(line string) (TeamTotals, error) {
	parts := strings.Fields(line)

	timeIndex := -1
	for i, part := range parts {
		for _, dur := range fullGameDurations {
			if part == dur {
				timeIndex = i
				break
			}
		}
		// Offsets anchor on the first duration token of the row.
		if timeIndex >= 0 {
			break
		}
	}
	if timeIndex < 0 {
		return TeamTotals{}, fmt.Errorf("no duration token in %q", line)
	}

	var totals TeamTotals
	for _, f := range totalsSplitLayout {
		idx := timeIndex + f.offset
		if idx >= len(parts) {
			return TeamTotals{}, fmt.Errorf("totals row too short: missing token %d", idx)
		}
		split, err := parseShootingSplit(parts[idx])
		if err != nil {
			return TeamTotals{}, err
		}
		*f.field(&totals) = split
	}

	for _, f := range totalsCountLayout {
		idx := timeIndex + f.offset
		if idx >= len(parts) {
			return TeamTotals{}, fmt.Errorf("totals row too short: missing token %d", idx)
		}
		v, err := strconv.Atoi(parts[idx])
		if err != nil {
			return TeamTotals{}, fmt.Errorf("non-numeric totals field %q", parts[idx])
		}
		*f.field(&totals) = v
	}

	pts, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return TeamTotals{}, fmt.Errorf("non-numeric points field %q", parts[len(parts)-1])
	}
	totals.Points = pts

	return totals, nil
}

func parseShootingSplit(s string) (Shooting, error) {
	made, attempted, ok := strings.Cut(s, "/")
	if !ok {
		return Shooting{}, fmt.Errorf("malformed shooting split %q", s)
	}
	m, err := strconv.Atoi(made)
	if err != nil {
		return Shooting{}, fmt.Errorf("malformed shooting split %q", s)
	}
	a, err := strconv.Atoi(attempted)
	if err != nil {
		return Shooting{}, fmt.Errorf("malformed shooting split %q", s)
	}
	return Shooting{Made: m, Attempted: a}, nil
}
