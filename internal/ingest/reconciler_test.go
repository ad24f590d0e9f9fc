package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etros/scorebook/internal/boxscore"
	"github.com/etros/scorebook/internal/store"
)

func TestReconciler_CreatesUnknownPlayers(t *testing.T) {
	players := newFakePlayers()
	r := NewReconciler(players)

	rows := []boxscore.PlayerRow{
		{Number: "4", Name: "Иванов"},
		{Number: "10", Name: "Петров"},
	}

	result := r.Reconcile(context.Background(), rows)

	require.Len(t, result.Created, 2)
	require.Empty(t, result.Existing)
	require.Empty(t, result.Errors)

	created, err := players.GetByName(context.Background(), "Иванов")
	require.NoError(t, err)
	require.Equal(t, "4", created.Number)
	require.Equal(t, PlaceholderBornYear, created.BornYear)
}

func TestReconciler_ExistingPlayerNumberCorrected(t *testing.T) {
	players := newFakePlayers()
	require.NoError(t, players.Create(context.Background(), &store.Player{Name: "Иванов", Number: "9"}))

	result := NewReconciler(players).Reconcile(context.Background(), []boxscore.PlayerRow{
		{Number: "4", Name: "Иванов"},
	})

	require.Empty(t, result.Created)
	require.Len(t, result.Existing, 1)
	require.Equal(t, "4", result.Existing[0].Number)

	updated, err := players.GetByName(context.Background(), "Иванов")
	require.NoError(t, err)
	require.Equal(t, "4", updated.Number)
}

func TestReconciler_SkipsDNPRows(t *testing.T) {
	players := newFakePlayers()

	result := NewReconciler(players).Reconcile(context.Background(), []boxscore.PlayerRow{
		{Number: "7", Name: "Георгиев", DidNotPlay: true},
		{Number: "4", Name: "Иванов"},
	})

	require.Len(t, result.Created, 1)
	require.Equal(t, "Иванов", result.Created[0].Name)

	_, err := players.GetByName(context.Background(), "Георгиев")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestReconciler_RowFailureDoesNotAbortBatch(t *testing.T) {
	players := newFakePlayers()
	players.failName = "Иванов"

	result := NewReconciler(players).Reconcile(context.Background(), []boxscore.PlayerRow{
		{Number: "4", Name: "Иванов"},
		{Number: "10", Name: "Петров"},
	})

	require.Len(t, result.Errors, 1)
	require.Equal(t, "Иванов", result.Errors[0].Name)
	require.Len(t, result.Created, 1)
	require.Equal(t, "Петров", result.Created[0].Name)
}

func TestReconcileResult_PlayerID(t *testing.T) {
	result := &ReconcileResult{
		Created:  []PlayerOutcome{{PlayerID: 1, Name: "Иванов"}},
		Existing: []PlayerOutcome{{PlayerID: 2, Name: "Петров"}},
	}

	id, ok := result.PlayerID("Иванов")
	require.True(t, ok)
	require.Equal(t, int64(1), id)

	id, ok = result.PlayerID("Петров")
	require.True(t, ok)
	require.Equal(t, int64(2), id)

	_, ok = result.PlayerID("Непознат")
	require.False(t, ok)
}
