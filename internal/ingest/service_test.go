package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/etros/scorebook/internal/boxscore"
	"github.com/etros/scorebook/internal/store"
)

var fixtureLines = []string{
	"Game No: 12 Attendance: 350",
	"Game Duration: 78:30",
	"Арена Ботевград, Saturday 15 March 2025",
	"Start time: 18:00",
	"Етрос 80 - 75 Висла",
	"Етрос (ЕТР)",
	"No. Name Min Field Goals 2 Points 3 Points Free Throws",
	"* 4 Иванов (C) 25:30 7/13 53.8 5/8 62.5 2/5 40.0 6/7 85.7 2 5 7 4 3 2 1 2 5 10 25 22",
	"10 Петров 20:15 4/8 50.0 4/6 66.7 0/2 0.0 2/2 100.0 1 3 4 2 1 0 1 3 1 -5 8 10",
	"7 Георгиев DNP",
	"Coach: Стоянов",
	"Totals 200:00 30/60 50.0 20/40 50.0 10/20 50.0 9/12 75.0 10 25 35 20 12 8 4 15 90",
	"Totals 200:00 28/61 45.9 18/40 45.0 10/21 47.6 9/11 81.8 8 22 30 18 10 6 3 14 75",
}

func fixtureTokens() []boxscore.Token {
	var tokens []boxscore.Token
	for y, line := range fixtureLines {
		for i, word := range strings.Fields(line) {
			tokens = append(tokens, boxscore.Token{Text: word, X: float64(i * 10), Y: float64(y)})
		}
	}
	return tokens
}

type testEnv struct {
	service *Service
	players *fakePlayers
	matches *fakeMatches
	stats   *fakeStats
	uploads *fakeUploads
	events  *fakeEvents
}

func newTestEnv() *testEnv {
	env := &testEnv{
		players: newFakePlayers(),
		matches: newFakeMatches(),
		stats:   newFakeStats(),
		uploads: newFakeUploads(),
		events:  &fakeEvents{},
	}
	env.service = NewService(
		&fakeExtractor{tokens: fixtureTokens()},
		env.players,
		env.matches,
		env.stats,
		env.uploads,
		NewTokenCodec([]byte("test-secret")),
		env.events,
	)
	return env
}

func TestIngest_FullCommit(t *testing.T) {
	env := newTestEnv()

	result, err := env.service.Ingest(context.Background(), []byte("pdf"), "game12.pdf", "admin")
	require.NoError(t, err)

	require.NotEmpty(t, result.UploadID)
	require.Len(t, result.PlayerManagement.Created, 2) // DNP row skipped
	require.Empty(t, result.PlayerManagement.Errors)

	match, err := env.matches.FindByDateOpponent(context.Background(), "2025-03-15", "Висла")
	require.NoError(t, err)
	require.Equal(t, result.MatchID, match.MatchID)
	require.Equal(t, store.MatchStatusFinished, match.Status)
	require.Equal(t, store.ResultWin, match.Result.String)
	require.Equal(t, int32(80), match.OurScore.Int32)
	require.Equal(t, int32(75), match.OpponentScore.Int32)
	require.Equal(t, 90, match.TotalPoints)
	require.Equal(t, 30, match.FieldGoalsMade)

	require.Equal(t, 2, env.stats.count())

	upload, err := env.uploads.GetByID(context.Background(), result.UploadID)
	require.NoError(t, err)
	require.Equal(t, store.UploadStatusCompleted, upload.Status)
	require.Equal(t, match.MatchID, upload.MatchID.Int64)
	require.Equal(t, "admin", upload.UploadedBy)
	require.Equal(t, "game12.pdf", upload.FileName)

	require.Equal(t, []string{store.UploadStatusCompleted}, env.events.uploadChanges)
	require.Equal(t, []int64{match.MatchID}, env.events.matches)
}

func TestIngest_DuplicateRejected(t *testing.T) {
	env := newTestEnv()

	first, err := env.service.Ingest(context.Background(), []byte("pdf"), "game12.pdf", "admin")
	require.NoError(t, err)

	_, err = env.service.Ingest(context.Background(), []byte("pdf"), "game12-again.pdf", "admin")

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, first.UploadID, dup.ExistingUploadID)
	require.Equal(t, "Висла", dup.Opponent)

	require.Equal(t, 1, env.uploads.count())
	require.Equal(t, 1, env.matches.count())
}

func TestIngest_ConvertsUpcomingMatch(t *testing.T) {
	env := newTestEnv()

	seed := &store.Match{
		MatchDate: mustDate("2025-03-15"),
		Opponent:  "Висла",
		Status:    store.MatchStatusUpcoming,
	}
	_, created, err := env.matches.CreateIfAbsent(context.Background(), seed)
	require.NoError(t, err)
	require.True(t, created)

	result, err := env.service.Ingest(context.Background(), []byte("pdf"), "game12.pdf", "admin")
	require.NoError(t, err)
	require.Equal(t, seed.MatchID, result.MatchID)
	require.Equal(t, 1, env.matches.count())

	match, err := env.matches.FindByDateOpponent(context.Background(), "2025-03-15", "Висла")
	require.NoError(t, err)
	require.Equal(t, store.MatchStatusFinished, match.Status)
}

func TestIngest_FailedCommitRecordedAndRetryable(t *testing.T) {
	env := newTestEnv()
	env.stats.failAfter = 1 // second stat insert fails

	first, err := env.service.Ingest(context.Background(), []byte("pdf"), "game12.pdf", "admin")
	require.Error(t, err)
	require.Nil(t, first)
	require.Equal(t, 1, env.stats.count())

	uploads, err := env.uploads.FindByMatch(context.Background(), "2025-03-15", "Висла")
	require.NoError(t, err)
	require.Equal(t, store.UploadStatusFailed, uploads.Status)
	require.Contains(t, uploads.ErrorMessage.String, "simulated stat insert failure")
	require.Equal(t, []string{store.UploadStatusFailed}, env.events.uploadChanges)

	// Retry succeeds under the same upload record without duplicating
	// the stat line that already landed.
	env.stats.failAfter = 0
	result, err := env.service.Ingest(context.Background(), []byte("pdf"), "game12.pdf", "admin")
	require.NoError(t, err)
	require.Equal(t, uploads.UploadID, result.UploadID)
	require.Equal(t, 1, env.uploads.count())
	require.Equal(t, 2, env.stats.count())

	final, err := env.uploads.GetByID(context.Background(), result.UploadID)
	require.NoError(t, err)
	require.Equal(t, store.UploadStatusCompleted, final.Status)
	require.False(t, final.ErrorMessage.Valid)
}

func TestIngest_UnparseableDocumentCreatesNoUpload(t *testing.T) {
	env := newTestEnv()
	env.service.extractor = &fakeExtractor{tokens: []boxscore.Token{{Text: "noise", X: 0, Y: 0}}}

	_, err := env.service.Ingest(context.Background(), []byte("pdf"), "noise.pdf", "admin")

	require.ErrorIs(t, err, ErrUnparseable)
	require.ErrorIs(t, err, boxscore.ErrIncompleteMetadata)
	require.Equal(t, 0, env.uploads.count())
	require.Equal(t, 0, env.matches.count())
}

func TestPreview_FindingsAndToken(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.players.Create(context.Background(), &store.Player{Name: "Иванов", Number: "9"}))

	preview, err := env.service.Preview(context.Background(), []byte("pdf"), "game12.pdf")
	require.NoError(t, err)

	require.Equal(t, "Висла", preview.MatchDetails.Opponent)
	require.Equal(t, 90, preview.TeamStatistics.Points)
	require.Len(t, preview.PlayerStatistics, 3)
	require.NotEmpty(t, preview.Token)

	statuses := map[string]string{}
	for _, p := range preview.PlayerStatistics {
		statuses[p.Name] = p.Status
	}
	require.Equal(t, PlayerStatusNumberMismatch, statuses["Иванов"])
	require.Equal(t, PlayerStatusNew, statuses["Петров"])
	require.Equal(t, PlayerStatusDNP, statuses["Георгиев"])

	// Player points (22+10) do not reach the recorded 80.
	require.NotEmpty(t, preview.PotentialIssues)
	joined := strings.Join(preview.PotentialIssues, "\n")
	require.Contains(t, joined, "32")
	require.Contains(t, joined, "80")

	// Nothing persisted by preview.
	require.Equal(t, 0, env.uploads.count())
	require.Equal(t, 0, env.matches.count())
}

func TestPreview_DuplicateRejected(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.Ingest(context.Background(), []byte("pdf"), "game12.pdf", "admin")
	require.NoError(t, err)

	_, err = env.service.Preview(context.Background(), []byte("pdf"), "game12.pdf")
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
}

func TestConfirm_MatchesDirectIngest(t *testing.T) {
	direct := newTestEnv()
	_, err := direct.service.Ingest(context.Background(), []byte("pdf"), "game12.pdf", "admin")
	require.NoError(t, err)
	directMatch, err := direct.matches.FindByDateOpponent(context.Background(), "2025-03-15", "Висла")
	require.NoError(t, err)

	previewed := newTestEnv()
	preview, err := previewed.service.Preview(context.Background(), []byte("pdf"), "game12.pdf")
	require.NoError(t, err)

	result, err := previewed.service.Confirm(context.Background(), preview.Token, nil, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, result.UploadID)

	confirmedMatch, err := previewed.matches.FindByDateOpponent(context.Background(), "2025-03-15", "Висла")
	require.NoError(t, err)

	// Same match either way.
	confirmedMatch.MatchID = directMatch.MatchID
	require.Equal(t, directMatch, confirmedMatch)
	require.Equal(t, direct.stats.count(), previewed.stats.count())
}

func TestConfirm_AppliesAdjustments(t *testing.T) {
	env := newTestEnv()

	preview, err := env.service.Preview(context.Background(), []byte("pdf"), "game12.pdf")
	require.NoError(t, err)

	points := 30
	venue := "Зала Арена"
	adjustments := &Adjustments{
		Players:  map[string]PlayerAdjustment{"Иванов": {Points: &points}},
		Metadata: &MetadataAdjustment{Venue: &venue},
	}

	result, err := env.service.Confirm(context.Background(), preview.Token, adjustments, "admin")
	require.NoError(t, err)

	match, err := env.matches.FindByDateOpponent(context.Background(), "2025-03-15", "Висла")
	require.NoError(t, err)
	require.Equal(t, result.MatchID, match.MatchID)
	require.Equal(t, "Зала Арена", match.Venue.String)

	playerID, ok := result.PlayerManagement.PlayerID("Иванов")
	require.True(t, ok)
	stat := &store.PlayerStatLine{MatchID: match.MatchID, PlayerID: playerID}
	created, err := env.stats.CreateIfAbsent(context.Background(), stat)
	require.NoError(t, err)
	require.False(t, created)

	env.stats.mu.Lock()
	stored := env.stats.byKey[statKey(match.MatchID, playerID)]
	env.stats.mu.Unlock()
	require.Equal(t, 30, stored.Points)
}

func TestConfirm_BadTokenRejectedBeforePersistence(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.Confirm(context.Background(), "not-a-token", nil, "admin")

	var tokErr *TokenError
	require.ErrorAs(t, err, &tokErr)
	require.Equal(t, 0, env.uploads.count())
}

func TestStatus_ReportsLifecycle(t *testing.T) {
	env := newTestEnv()

	result, err := env.service.Ingest(context.Background(), []byte("pdf"), "game12.pdf", "admin")
	require.NoError(t, err)

	status, err := env.service.Status(context.Background(), result.UploadID)
	require.NoError(t, err)
	require.Equal(t, store.UploadStatusCompleted, status.Status)
	require.Equal(t, "2025-03-15", status.MatchDate)
	require.Equal(t, "Висла", status.Opponent)
	require.NotNil(t, status.MatchID)
	require.Equal(t, result.MatchID, *status.MatchID)
	require.Empty(t, status.ErrorMessage)

	_, err = env.service.Status(context.Background(), "missing-id")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
