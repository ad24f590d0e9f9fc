package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/etros/scorebook/internal/boxscore"
	"github.com/etros/scorebook/internal/store"
)

// Validation statuses attached to each previewed player row.
const (
	PlayerStatusOK             = "ok"
	PlayerStatusNew            = "new"
	PlayerStatusNumberMismatch = "number_mismatch"
	PlayerStatusDNP            = "dnp"
)

// highPointsThreshold flags individual scoring figures worth a second
// look before committing.
const highPointsThreshold = 50

// nearMissDistance is the maximum edit distance at which a new roster
// name is reported as a possible misspelling of an existing player.
const nearMissDistance = 2

// PlayerPreview is one roster row annotated with its reconciliation
// outlook.
type PlayerPreview struct {
	boxscore.PlayerRow
	Status string `json:"status"`
}

// PreviewResult is the response of the preview phase: the parsed
// document broken out for review, the findings, and the token that
// carries the document into confirm.
type PreviewResult struct {
	MatchDetails     boxscore.MatchMetadata `json:"match_details"`
	TeamStatistics   boxscore.TeamTotals    `json:"team_statistics"`
	PlayerStatistics []PlayerPreview        `json:"player_statistics"`
	PotentialIssues  []string               `json:"potential_issues"`
	Token            string                 `json:"token"`
}

// validateDocument inspects a parsed document against the current
// roster and returns annotated player rows plus human-readable
// findings. Findings are advisory: they never block confirmation.
func validateDocument(ctx context.Context, players PlayerStore, doc *boxscore.Document) ([]PlayerPreview, []string, error) {
	roster, err := players.GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading roster for validation: %w", err)
	}

	byName := make(map[string]*store.Player, len(roster))
	for _, p := range roster {
		byName[p.Name] = p
	}

	var previews []PlayerPreview
	var issues []string
	playerPoints := 0

	for _, row := range doc.EtrosTeam().Players {
		preview := PlayerPreview{PlayerRow: row, Status: PlayerStatusOK}

		switch {
		case row.DidNotPlay:
			preview.Status = PlayerStatusDNP
		case byName[row.Name] == nil:
			preview.Status = PlayerStatusNew
			issues = append(issues, fmt.Sprintf("player %q is not in the roster and will be created", row.Name))
			if near := nearestRosterName(row.Name, roster); near != "" {
				issues = append(issues, fmt.Sprintf("player %q closely resembles existing player %q; check for a misspelling", row.Name, near))
			}
		case byName[row.Name].Number != row.Number && row.Number != "":
			preview.Status = PlayerStatusNumberMismatch
			issues = append(issues, fmt.Sprintf("player %q wears number %s here but %s in the roster; the roster will be updated",
				row.Name, row.Number, byName[row.Name].Number))
		}

		if !row.DidNotPlay {
			playerPoints += row.Points
			if row.Points > highPointsThreshold {
				issues = append(issues, fmt.Sprintf("player %q scored %d points; verify against the source sheet", row.Name, row.Points))
			}
		}

		previews = append(previews, preview)
	}

	if teamScore := doc.Metadata.EtrosScore; playerPoints != teamScore {
		issues = append(issues, fmt.Sprintf("player points sum to %d but the recorded team score is %d", playerPoints, teamScore))
	}

	return previews, issues, nil
}

// nearestRosterName returns an existing player name within the
// near-miss edit distance of the given name, or "" when none is close.
func nearestRosterName(name string, roster []*store.Player) string {
	best := ""
	bestDistance := nearMissDistance + 1

	for _, p := range roster {
		if strings.EqualFold(p.Name, name) {
			continue
		}
		if d := levenshtein.ComputeDistance(name, p.Name); d < bestDistance {
			best = p.Name
			bestDistance = d
		}
	}

	return best
}

// checkDuplicate looks for an earlier ingestion of the same game. A
// failed upload does not count: the game may be resubmitted.
func checkDuplicate(ctx context.Context, uploads UploadStore, matchDate, opponent string) (*store.Upload, error) {
	existing, err := uploads.FindByMatch(ctx, matchDate, opponent)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if existing.Status == store.UploadStatusFailed {
		return existing, nil
	}

	return existing, &DuplicateError{
		MatchDate:        matchDate,
		Opponent:         opponent,
		ExistingUploadID: existing.UploadID,
	}
}
