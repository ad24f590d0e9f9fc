package boxscore

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrIncompleteMetadata is returned when a document does not resolve
// the fields every downstream step depends on: the match date, the
// opponent name and which side Етрос played on.
var ErrIncompleteMetadata = errors.New("missing required match information (date, opponent, or team positions)")

var (
	gameNumberRe = regexp.MustCompile(`(?i)Game No\.?:\s*(\d+)`)
	attendanceRe = regexp.MustCompile(`(?i)Attendance:\s*(\d+)`)
	durationRe   = regexp.MustCompile(`(?i)Game Duration:\s*(\d{2}):(\d{2})`)
	scoreRe      = regexp.MustCompile(`(\S+)\s+(\d+)\s*[–-]\s*(\d+)\s+(\S+)`)
	dateVenueRe  = regexp.MustCompile(`([^,]+),\s*(\p{L}+)\s+(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)
	startTimeRe  = regexp.MustCompile(`(?i)Start time:\s*(\d{2}):(\d{2})`)
)

// Month names as the federation prints them: English, Bulgarian in
// Cyrillic, and the Latin transliteration some exports use.
var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January, "qnuari": time.January, "януари": time.January,
	"feb": time.February, "february": time.February, "februari": time.February, "февруари": time.February,
	"mar": time.March, "march": time.March, "mart": time.March, "март": time.March,
	"apr": time.April, "april": time.April, "април": time.April,
	"may": time.May, "mai": time.May, "май": time.May,
	"jun": time.June, "june": time.June, "juni": time.June, "юни": time.June,
	"jul": time.July, "july": time.July, "juli": time.July, "юли": time.July,
	"aug": time.August, "august": time.August, "avgust": time.August, "август": time.August,
	"sep": time.September, "september": time.September, "septemvri": time.September, "септември": time.September,
	"oct": time.October, "october": time.October, "oktomvri": time.October, "октомври": time.October,
	"nov": time.November, "november": time.November, "noemvri": time.November, "ноември": time.November,
	"dec": time.December, "december": time.December, "dekemvri": time.December, "декември": time.December,
}

// extractMetadata scans every line for the five header patterns. Scan
// order does not matter beyond later matches overwriting earlier ones;
// the start-time line only refines an already-parsed date.
func extractMetadata(lines []string) (MatchMetadata, error) {
	var meta MatchMetadata
	homeResolved := false

	for _, line := range lines {
		if m := gameNumberRe.FindStringSubmatch(line); m != nil {
			meta.GameNumber = m[1]
		}

		if m := attendanceRe.FindStringSubmatch(line); m != nil {
			meta.Attendance, _ = strconv.Atoi(m[1])
		}

		if m := durationRe.FindStringSubmatch(line); m != nil {
			meta.Duration = m[1] + ":" + m[2]
		}

		if m := scoreRe.FindStringSubmatch(line); m != nil {
			left, right := m[1], m[4]
			leftScore, _ := strconv.Atoi(m[2])
			rightScore, _ := strconv.Atoi(m[3])

			switch {
			case left == TargetTeamName:
				meta.HomeIsEtros = true
				homeResolved = true
				meta.EtrosScore = leftScore
				meta.OpponentScore = rightScore
				meta.Opponent = right
			case right == TargetTeamName:
				meta.HomeIsEtros = false
				homeResolved = true
				meta.EtrosScore = rightScore
				meta.OpponentScore = leftScore
				meta.Opponent = left
			}
		}

		if m := dateVenueRe.FindStringSubmatch(line); m != nil {
			meta.Venue = strings.TrimSpace(m[1])
			if date, ok := parseMatchDate(m[3], m[4], m[5]); ok {
				meta.Date = date
			}
		}

		if m := startTimeRe.FindStringSubmatch(line); m != nil && !meta.Date.IsZero() {
			hours, _ := strconv.Atoi(m[1])
			minutes, _ := strconv.Atoi(m[2])
			d := meta.Date
			meta.Date = time.Date(d.Year(), d.Month(), d.Day(), hours, minutes, 0, 0, d.Location())
		}
	}

	var missing []string
	if meta.Date.IsZero() {
		missing = append(missing, "date")
	}
	if meta.Opponent == "" {
		missing = append(missing, "opponent")
	}
	if !homeResolved {
		missing = append(missing, "team positions")
	}
	if len(missing) > 0 {
		return MatchMetadata{}, fmt.Errorf("%w: unresolved %s", ErrIncompleteMetadata, strings.Join(missing, ", "))
	}

	return meta, nil
}

// parseMatchDate tries the native layout first, then the static month
// table for names time.Parse does not know.
func parseMatchDate(day, month, year string) (time.Time, bool) {
	if t, err := time.Parse("January 2 2006", month+" "+day+" "+year); err == nil {
		return t, true
	}

	m, ok := monthNames[strings.ToLower(month)]
	if !ok {
		return time.Time{}, false
	}

	d, _ := strconv.Atoi(day)
	y, _ := strconv.Atoi(year)
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}
