package boxscore

import (
	"math"
	"sort"
	"strings"
)

// ReconstructLines recovers row order from a flat token stream. Tokens
// are grouped by their rounded vertical coordinate (the rendering
// engine jitters sub-unit offsets within one visual row), groups are
// ordered top to bottom, tokens within a group left to right, and each
// group is joined into a single space-separated line. An empty stream
// yields zero lines.
func ReconstructLines(tokens []Token) []string {
	rows := make(map[int][]Token)
	for _, tok := range tokens {
		y := int(math.Round(tok.Y))
		rows[y] = append(rows[y], tok)
	}

	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Ints(ys)

	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		row := rows[y]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		parts := make([]string, len(row))
		for i, tok := range row {
			parts[i] = tok.Text
		}
		lines = append(lines, strings.Join(parts, " "))
	}

	return lines
}
