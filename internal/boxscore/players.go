package boxscore

import (
	"regexp"
	"strconv"
	"strings"
)

// rosterState tracks the scan through the Етрос roster block.
type rosterState int

const (
	beforeSection rosterState = iota
	inSection
	afterSection
)

// A roster line starts with an optional starter marker, the jersey
// number, then everything up to the first digit of the minutes column.
var playerStartRe = regexp.MustCompile(`^\s*(\*)?\s*(\d+)\s+([^0-9]+)`)

var captainMarkerRe = regexp.MustCompile(`\s*\(C\)`)

// Played-row field layout, as offsets into the whitespace-split stat
// tail (minutes is token 0). Splits at 1/3/5/7 are each followed by a
// skipped percentage column; total rebounds (offset 11) is skipped.
var playerSplitLayout = []struct {
	offset int
	field  func(*PlayerRow) *Shooting
}{
	{1, func(p *PlayerRow) *Shooting { return &p.FieldGoals }},
	{3, func(p *PlayerRow) *Shooting { return &p.TwoPoints }},
	{5, func(p *PlayerRow) *Shooting { return &p.ThreePoints }},
	{7, func(p *PlayerRow) *Shooting { return &p.FreeThrows }},
}

var playerCountLayout = []struct {
	offset int
	field  func(*PlayerRow) *int
}{
	{9, func(p *PlayerRow) *int { return &p.OffensiveRebounds }},
	{10, func(p *PlayerRow) *int { return &p.DefensiveRebounds }},
	{12, func(p *PlayerRow) *int { return &p.Assists }},
	{13, func(p *PlayerRow) *int { return &p.Turnovers }},
	{14, func(p *PlayerRow) *int { return &p.Steals }},
	{15, func(p *PlayerRow) *int { return &p.Blocks }},
	{16, func(p *PlayerRow) *int { return &p.PersonalFouls }},
	{17, func(p *PlayerRow) *int { return &p.FoulsDrawn }},
	{18, func(p *PlayerRow) *int { return &p.PlusMinus }},
	{19, func(p *PlayerRow) *int { return &p.Efficiency }},
	{20, func(p *PlayerRow) *int { return &p.Points }},
}

// extractPlayerRows walks the lines once, entering the roster block on
// the line naming the team with its abbreviation and leaving it on a
// "Coach:" or "Totals" line. The last accumulated player is flushed
// even when the stream ends without an explicit section end.
func extractPlayerRows(lines []string) []PlayerRow {
	var players []PlayerRow
	var current *PlayerRow
	state := beforeSection

	for _, line := range lines {
		switch state {
		case beforeSection:
			if strings.Contains(line, TargetTeamName) && strings.Contains(line, TargetTeamAbbreviation) {
				state = inSection
			}
			continue

		case afterSection:
			continue
		}

		if strings.Contains(line, "Coach:") || strings.Contains(line, "Totals") {
			state = afterSection
			if current != nil {
				players = append(players, *current)
				current = nil
			}
			continue
		}

		if isRosterHeaderLine(line) {
			continue
		}

		m := playerStartRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}

		if current != nil {
			players = append(players, *current)
		}
		current = parsePlayerLine(line, m)
	}

	if current != nil {
		players = append(players, *current)
	}

	return players
}

func isRosterHeaderLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	for _, marker := range []string{"No.", "Team/Coach", "Field Goals", "M/A"} {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// parsePlayerLine builds a PlayerRow from a roster line and the match
// indices of playerStartRe against it.
func parsePlayerLine(line string, m []int) *PlayerRow {
	row := &PlayerRow{
		Starter: m[2] >= 0,
		Number:  line[m[4]:m[5]],
	}

	name := strings.TrimSpace(line[m[6]:m[7]])
	name = captainMarkerRe.ReplaceAllString(name, "")

	if strings.Contains(line, "DNP") {
		row.DidNotPlay = true
		row.Name = strings.TrimSpace(strings.TrimSuffix(name, "DNP"))
		return row
	}
	row.Name = name

	stats := strings.Fields(strings.TrimSpace(line[m[1]:]))
	if len(stats) == 0 {
		return row
	}
	row.Minutes = stats[0]

	for _, f := range playerSplitLayout {
		*f.field(row) = splitOrZero(tokenAt(stats, f.offset))
	}
	for _, f := range playerCountLayout {
		*f.field(row) = atoiOrZero(tokenAt(stats, f.offset))
	}

	return row
}

func tokenAt(parts []string, i int) string {
	if i < 0 || i >= len(parts) {
		return ""
	}
	return parts[i]
}

// atoiOrZero defaults unparseable fields to zero: a smudged digit in
// one column must not discard the whole row.
func atoiOrZero(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func splitOrZero(s string) Shooting {
	split, err := parseShootingSplit(s)
	if err != nil {
		return Shooting{}
	}
	return split
}
