// Package ingest runs the box-score ingestion workflow: parse, roster
// reconciliation, duplicate detection, and the persistence sequence
// shared by direct ingest and the preview/confirm flow.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/etros/scorebook/internal/store"
)

// ErrUnparseable marks documents the pipeline could not turn into a
// box score, whether the bytes were not a readable PDF or the required
// metadata never resolved. Nothing is persisted for these.
var ErrUnparseable = errors.New("unparseable document")

// PlayerStore is the roster persistence the reconciler and the
// workflow need.
type PlayerStore interface {
	GetByName(ctx context.Context, name string) (*store.Player, error)
	GetAll(ctx context.Context) ([]*store.Player, error)
	Create(ctx context.Context, player *store.Player) error
	UpdateNumber(ctx context.Context, playerID int64, number string) error
	AppendStatRef(ctx context.Context, playerID int64, statID int64) error
}

// MatchStore is the match persistence the workflow needs.
type MatchStore interface {
	FindByDateOpponent(ctx context.Context, matchDate string, opponent string) (*store.Match, error)
	CreateIfAbsent(ctx context.Context, match *store.Match) (*store.Match, bool, error)
	Finalize(ctx context.Context, match *store.Match) error
	AppendStatRef(ctx context.Context, matchID int64, statID int64) error
}

// StatStore is the stat line persistence the workflow needs.
type StatStore interface {
	CreateIfAbsent(ctx context.Context, stat *store.PlayerStatLine) (bool, error)
}

// UploadStore is the upload bookkeeping the workflow needs.
type UploadStore interface {
	Create(ctx context.Context, upload *store.Upload) error
	GetByID(ctx context.Context, uploadID string) (*store.Upload, error)
	FindByMatch(ctx context.Context, matchDate string, opponent string) (*store.Upload, error)
	SetProcessing(ctx context.Context, uploadID string) error
	SetCompleted(ctx context.Context, uploadID string, matchID int64) error
	SetFailed(ctx context.Context, uploadID string, reason string) error
}

// EventSink receives workflow lifecycle events. Implementations fan
// out to the Redis stream and the websocket hub; a nil sink is valid.
type EventSink interface {
	UploadStatusChanged(ctx context.Context, upload *store.Upload)
	MatchIngested(ctx context.Context, match *store.Match)
}

// DuplicateError reports that a game has already been ingested. It
// carries the upload that did it so the caller can point at the
// earlier submission.
type DuplicateError struct {
	MatchDate        string
	Opponent         string
	ExistingUploadID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("game on %s vs %s already ingested by upload %s",
		e.MatchDate, e.Opponent, e.ExistingUploadID)
}

// TokenError reports a preview token that failed to decode or verify.
// It always precedes persistence: a bad token commits nothing.
type TokenError struct {
	Reason string
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("preview token %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("preview token %s", e.Reason)
}

func (e *TokenError) Unwrap() error { return e.Err }
