package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/etros/scorebook/internal/boxscore"
	"github.com/etros/scorebook/internal/extract"
	"github.com/etros/scorebook/internal/store"
)

// Service runs the three ingestion flows: direct ingest, preview, and
// confirm. All three share one commit sequence; preview stops short of
// it and hands the parsed document forward in a token.
type Service struct {
	extractor  extract.Extractor
	players    PlayerStore
	matches    MatchStore
	stats      StatStore
	uploads    UploadStore
	reconciler *Reconciler
	tokens     *TokenCodec
	events     EventSink
}

// NewService wires the workflow. events may be nil.
func NewService(
	extractor extract.Extractor,
	players PlayerStore,
	matches MatchStore,
	stats StatStore,
	uploads UploadStore,
	tokens *TokenCodec,
	events EventSink,
) *Service {
	return &Service{
		extractor:  extractor,
		players:    players,
		matches:    matches,
		stats:      stats,
		uploads:    uploads,
		reconciler: NewReconciler(players),
		tokens:     tokens,
		events:     events,
	}
}

// IngestResult is the response of direct ingest and confirm.
type IngestResult struct {
	UploadID         string           `json:"upload_id"`
	MatchID          int64            `json:"match_id"`
	PlayerManagement *ReconcileResult `json:"player_management"`
}

// UploadStatus is the response of a status query.
type UploadStatus struct {
	UploadID     string `json:"upload_id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	MatchID      *int64 `json:"match_id,omitempty"`
	MatchDate    string `json:"match_date"`
	Opponent     string `json:"opponent"`
}

// Ingest parses a box-score document and commits it in one step.
func (s *Service) Ingest(ctx context.Context, data []byte, fileName, uploadedBy string) (*IngestResult, error) {
	doc, err := s.parse(data)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, doc, fileName, uploadedBy)
}

// Preview parses a document and returns validation findings plus a
// token carrying the parsed state, committing nothing. A game that
// already has a live upload is rejected here, before the operator
// spends time reviewing it.
func (s *Service) Preview(ctx context.Context, data []byte, fileName string) (*PreviewResult, error) {
	doc, err := s.parse(data)
	if err != nil {
		return nil, err
	}

	if _, err := checkDuplicate(ctx, s.uploads, dateKey(doc.Metadata.Date), doc.Metadata.Opponent); err != nil {
		return nil, err
	}

	previews, issues, err := validateDocument(ctx, s.players, doc)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Encode(doc, fileName)
	if err != nil {
		return nil, err
	}

	return &PreviewResult{
		MatchDetails:     doc.Metadata,
		TeamStatistics:   doc.TeamTotals,
		PlayerStatistics: previews,
		PotentialIssues:  issues,
		Token:            token,
	}, nil
}

// Confirm decodes a preview token, applies the operator's adjustments
// to the carried document, and runs the same commit sequence as direct
// ingest.
func (s *Service) Confirm(ctx context.Context, token string, adjustments *Adjustments, uploadedBy string) (*IngestResult, error) {
	doc, fileName, err := s.tokens.Decode(token)
	if err != nil {
		return nil, err
	}

	adjustments.Apply(doc)

	return s.commit(ctx, doc, fileName, uploadedBy)
}

// Status reports the lifecycle state of one upload.
func (s *Service) Status(ctx context.Context, uploadID string) (*UploadStatus, error) {
	upload, err := s.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	status := &UploadStatus{
		UploadID:  upload.UploadID,
		Status:    upload.Status,
		MatchDate: upload.MatchDate.Format("2006-01-02"),
		Opponent:  upload.Opponent,
	}
	if upload.ErrorMessage.Valid {
		status.ErrorMessage = upload.ErrorMessage.String
	}
	if upload.MatchID.Valid {
		id := upload.MatchID.Int64
		status.MatchID = &id
	}

	return status, nil
}

func (s *Service) parse(data []byte) (*boxscore.Document, error) {
	tokens, err := s.extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("%w: extracting text: %w", ErrUnparseable, err)
	}

	doc, err := boxscore.Parse(tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}

	return doc, nil
}

// commit is the shared persistence sequence. The upload record is the
// ledger: it is never rolled back, and its terminal state tells the
// caller and later status queries how the attempt ended.
func (s *Service) commit(ctx context.Context, doc *boxscore.Document, fileName, uploadedBy string) (*IngestResult, error) {
	reconciled := s.reconciler.Reconcile(ctx, doc.EtrosTeam().Players)

	upload := &store.Upload{
		FileName:   fileName,
		UploadedBy: uploadedBy,
		MatchDate:  dateOnly(doc.Metadata.Date),
		Opponent:   doc.Metadata.Opponent,
		Status:     store.UploadStatusPending,
	}

	if err := s.uploads.Create(ctx, upload); err != nil {
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}

		existing, dupErr := checkDuplicate(ctx, s.uploads, dateKey(doc.Metadata.Date), doc.Metadata.Opponent)
		if dupErr != nil {
			return nil, dupErr
		}
		if existing == nil {
			return nil, err
		}
		// Failed upload for the same game: retry under the same record.
		upload.UploadID = existing.UploadID
	}

	if err := s.uploads.SetProcessing(ctx, upload.UploadID); err != nil {
		return nil, err
	}
	upload.Status = store.UploadStatusProcessing

	matchID, err := s.persistMatch(ctx, doc, reconciled)
	if err != nil {
		log.Printf("⚠️  Commit failed for upload %s: %v", upload.UploadID, err)
		if failErr := s.uploads.SetFailed(ctx, upload.UploadID, err.Error()); failErr != nil {
			log.Printf("⚠️  Could not record failure on upload %s: %v", upload.UploadID, failErr)
		}
		upload.Status = store.UploadStatusFailed
		upload.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		s.emitUpload(ctx, upload)
		return nil, fmt.Errorf("committing upload %s: %w", upload.UploadID, err)
	}

	if err := s.uploads.SetCompleted(ctx, upload.UploadID, matchID); err != nil {
		return nil, err
	}
	upload.Status = store.UploadStatusCompleted
	upload.MatchID = sql.NullInt64{Int64: matchID, Valid: true}
	s.emitUpload(ctx, upload)

	log.Printf("✓ Ingested %s vs %s as match %d (upload %s)",
		dateKey(doc.Metadata.Date), doc.Metadata.Opponent, matchID, upload.UploadID)

	return &IngestResult{
		UploadID:         upload.UploadID,
		MatchID:          matchID,
		PlayerManagement: reconciled,
	}, nil
}

// persistMatch converts or creates the match row and writes the stat
// lines. Every step is idempotent, so a retry after a mid-commit
// failure finishes the remaining work without duplicating the done
// part.
func (s *Service) persistMatch(ctx context.Context, doc *boxscore.Document, reconciled *ReconcileResult) (int64, error) {
	meta := doc.Metadata

	seed := &store.Match{
		MatchDate:   dateOnly(meta.Date),
		Opponent:    meta.Opponent,
		HomeIsEtros: meta.HomeIsEtros,
		Status:      store.MatchStatusUpcoming,
	}
	if !meta.Date.IsZero() {
		seed.TipOff = sql.NullTime{Time: meta.Date, Valid: true}
	}
	if meta.Venue != "" {
		seed.Venue = sql.NullString{String: meta.Venue, Valid: true}
	}

	match, created, err := s.matches.CreateIfAbsent(ctx, seed)
	if err != nil {
		return 0, err
	}
	if !created && match.Status == store.MatchStatusUpcoming {
		log.Printf("✓ Converting upcoming match %d vs %s to finished", match.MatchID, match.Opponent)
	}

	final := finishedMatch(match.MatchID, doc)
	if err := s.matches.Finalize(ctx, final); err != nil {
		return 0, err
	}

	for _, row := range doc.EtrosTeam().Players {
		if row.DidNotPlay {
			continue
		}

		playerID, ok := reconciled.PlayerID(row.Name)
		if !ok {
			log.Printf("⚠️  No identity for %q, skipping stat line", row.Name)
			continue
		}

		stat := statLineFromRow(match.MatchID, playerID, row)
		if _, err := s.stats.CreateIfAbsent(ctx, stat); err != nil {
			return 0, err
		}
		if err := s.matches.AppendStatRef(ctx, match.MatchID, stat.StatID); err != nil {
			return 0, err
		}
		if err := s.players.AppendStatRef(ctx, playerID, stat.StatID); err != nil {
			return 0, err
		}
	}

	if s.events != nil {
		s.events.MatchIngested(ctx, final)
	}

	return match.MatchID, nil
}

func (s *Service) emitUpload(ctx context.Context, upload *store.Upload) {
	if s.events != nil {
		s.events.UploadStatusChanged(ctx, upload)
	}
}

func finishedMatch(matchID int64, doc *boxscore.Document) *store.Match {
	meta := doc.Metadata
	totals := doc.TeamTotals

	match := &store.Match{
		MatchID:       matchID,
		MatchDate:     dateOnly(meta.Date),
		Opponent:      meta.Opponent,
		HomeIsEtros:   meta.HomeIsEtros,
		Status:        store.MatchStatusFinished,
		OurScore:      sql.NullInt32{Int32: int32(meta.EtrosScore), Valid: true},
		OpponentScore: sql.NullInt32{Int32: int32(meta.OpponentScore), Valid: true},

		FieldGoalsMade:       totals.FieldGoals.Made,
		FieldGoalsAttempted:  totals.FieldGoals.Attempted,
		TwoPointsMade:        totals.TwoPoints.Made,
		TwoPointsAttempted:   totals.TwoPoints.Attempted,
		ThreePointsMade:      totals.ThreePoints.Made,
		ThreePointsAttempted: totals.ThreePoints.Attempted,
		FreeThrowsMade:       totals.FreeThrows.Made,
		FreeThrowsAttempted:  totals.FreeThrows.Attempted,
		OffensiveRebounds:    totals.OffensiveRebounds,
		DefensiveRebounds:    totals.DefensiveRebounds,
		TotalAssists:         totals.Assists,
		TotalTurnovers:       totals.Turnovers,
		TotalSteals:          totals.Steals,
		TotalBlocks:          totals.Blocks,
		TotalFouls:           totals.Fouls,
		TotalPoints:          totals.Points,
	}

	if !meta.Date.IsZero() {
		match.TipOff = sql.NullTime{Time: meta.Date, Valid: true}
	}
	if meta.Venue != "" {
		match.Venue = sql.NullString{String: meta.Venue, Valid: true}
	}

	switch {
	case meta.EtrosScore > meta.OpponentScore:
		match.Result = sql.NullString{String: store.ResultWin, Valid: true}
	case meta.EtrosScore < meta.OpponentScore:
		match.Result = sql.NullString{String: store.ResultLoss, Valid: true}
	}

	return match
}

func statLineFromRow(matchID, playerID int64, row boxscore.PlayerRow) *store.PlayerStatLine {
	return &store.PlayerStatLine{
		MatchID:              matchID,
		PlayerID:             playerID,
		Starter:              row.Starter,
		Minutes:              row.Minutes,
		FieldGoalsMade:       row.FieldGoals.Made,
		FieldGoalsAttempted:  row.FieldGoals.Attempted,
		TwoPointsMade:        row.TwoPoints.Made,
		TwoPointsAttempted:   row.TwoPoints.Attempted,
		ThreePointsMade:      row.ThreePoints.Made,
		ThreePointsAttempted: row.ThreePoints.Attempted,
		FreeThrowsMade:       row.FreeThrows.Made,
		FreeThrowsAttempted:  row.FreeThrows.Attempted,
		OffensiveRebounds:    row.OffensiveRebounds,
		DefensiveRebounds:    row.DefensiveRebounds,
		Assists:              row.Assists,
		Turnovers:            row.Turnovers,
		Steals:               row.Steals,
		Blocks:               row.Blocks,
		PersonalFouls:        row.PersonalFouls,
		FoulsDrawn:           row.FoulsDrawn,
		PlusMinus:            row.PlusMinus,
		Efficiency:           row.Efficiency,
		Points:               row.Points,
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
