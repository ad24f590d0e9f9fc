package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/etros/scorebook/internal/boxscore"
	"github.com/etros/scorebook/internal/store"
)

// PlaceholderBornYear is recorded for players created from a box
// score. The document carries no birth dates; the real year is filled
// in by hand later.
const PlaceholderBornYear = 2000

// PlayerOutcome describes one roster member after reconciliation.
type PlayerOutcome struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	Number   string `json:"number"`
}

// RowError is a single roster row the reconciler could not resolve.
type RowError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ReconcileResult is the best-effort outcome of a roster batch. A row
// failure lands in Errors and the batch continues.
type ReconcileResult struct {
	Created  []PlayerOutcome `json:"created"`
	Existing []PlayerOutcome `json:"existing"`
	Errors   []RowError      `json:"errors"`
}

// PlayerID finds the resolved ID for a roster name, reporting whether
// the name reconciled successfully.
func (r *ReconcileResult) PlayerID(name string) (int64, bool) {
	for _, p := range r.Created {
		if p.Name == name {
			return p.PlayerID, true
		}
	}
	for _, p := range r.Existing {
		if p.Name == name {
			return p.PlayerID, true
		}
	}
	return 0, false
}

// Reconciler resolves parsed roster rows against the player table.
// Name is the identity key; the jersey number follows the latest box
// score.
type Reconciler struct {
	players PlayerStore
}

// NewReconciler creates a reconciler over the given player store.
func NewReconciler(players PlayerStore) *Reconciler {
	return &Reconciler{players: players}
}

// Reconcile processes the non-DNP rows of one parsed roster. Unknown
// names are created with a placeholder birth year; known names get an
// opportunistic number correction. Per-row failures are collected, not
// fatal.
func (r *Reconciler) Reconcile(ctx context.Context, rows []boxscore.PlayerRow) *ReconcileResult {
	result := &ReconcileResult{}

	for _, row := range rows {
		if row.DidNotPlay {
			continue
		}

		name := strings.TrimSpace(row.Name)
		if name == "" {
			result.Errors = append(result.Errors, RowError{Name: row.Name, Error: "empty player name"})
			continue
		}

		outcome, created, err := r.reconcileRow(ctx, name, row.Number)
		if err != nil {
			log.Printf("⚠️  Reconciliation failed for %q: %v", name, err)
			result.Errors = append(result.Errors, RowError{Name: name, Error: err.Error()})
			continue
		}

		if created {
			result.Created = append(result.Created, outcome)
		} else {
			result.Existing = append(result.Existing, outcome)
		}
	}

	return result
}

func (r *Reconciler) reconcileRow(ctx context.Context, name, number string) (PlayerOutcome, bool, error) {
	existing, err := r.players.GetByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		player := &store.Player{Name: name, Number: number, BornYear: PlaceholderBornYear}
		if err := r.players.Create(ctx, player); err != nil {
			return PlayerOutcome{}, false, fmt.Errorf("creating player: %w", err)
		}
		return PlayerOutcome{PlayerID: player.PlayerID, Name: name, Number: number}, true, nil
	}
	if err != nil {
		return PlayerOutcome{}, false, err
	}

	if existing.Number != number && number != "" {
		if err := r.players.UpdateNumber(ctx, existing.PlayerID, number); err != nil {
			return PlayerOutcome{}, false, fmt.Errorf("correcting number: %w", err)
		}
		existing.Number = number
	}

	return PlayerOutcome{PlayerID: existing.PlayerID, Name: name, Number: existing.Number}, false, nil
}
