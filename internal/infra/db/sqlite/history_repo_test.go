package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmclabs/medassist/internal/domain/analysis"
	"github.com/kmclabs/medassist/internal/domain/history"
)

func newTestRepo(t *testing.T) *HistoryRepository {
	t.Helper()
	db, err := Connect(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	repo, err := NewHistoryRepository(db, nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func entry(session, input string, at time.Time) *history.Entry {
	return &history.Entry{
		ID:        history.EntryID(uuid.New().String()),
		SessionID: session,
		CreatedAt: at,
		Input:     input,
		Result: &analysis.Result{
			Summary:          "summary of " + input,
			Considerations:   []string{"a", "b"},
			RedFlagStatus:    analysis.StatusNormal,
			NextSteps:        "rest",
			MedicalEducation: "context",
			Disclaimer:       analysis.Disclaimer,
		},
	}
}

func TestRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	first := entry("dev-1", "first", base)
	second := entry("dev-1", "second", base.Add(time.Minute))
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Recent(ctx, "dev-1", history.MaxEntries)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first, and every field survives the trip.
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, second.Input, got[0].Input)
	assert.Equal(t, second.CreatedAt, got[0].CreatedAt)
	assert.Equal(t, second.Result.Summary, got[0].Result.Summary)
	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, analysis.Disclaimer, got[1].Result.Disclaimer)
	assert.Equal(t, []string{"a", "b"}, got[1].Result.Considerations)
}

func TestCapEviction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= history.MaxEntries+1; i++ {
		e := entry("dev-1", fmt.Sprintf("complaint %d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Save(ctx, e))
	}

	got, err := repo.Recent(ctx, "dev-1", history.MaxEntries)
	require.NoError(t, err)
	require.Len(t, got, history.MaxEntries)
	assert.Equal(t, "complaint 11", got[0].Input)
	assert.Equal(t, "complaint 2", got[len(got)-1].Input, "oldest entry was evicted")
}

func TestSameSecondOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("recent orders by completion time, not id", func(t *testing.T) {
		// Ids chosen so lexical id order contradicts completion order.
		older := entry("dev-1", "older", base)
		older.ID = "zzzz-older"
		newer := entry("dev-1", "newer", base.Add(500*time.Millisecond))
		newer.ID = "aaaa-newer"
		require.NoError(t, repo.Save(ctx, older))
		require.NoError(t, repo.Save(ctx, newer))

		got, err := repo.Recent(ctx, "dev-1", history.MaxEntries)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "newer", got[0].Input)
		assert.Equal(t, "older", got[1].Input)
	})

	t.Run("prune evicts the oldest, not the lexically largest id", func(t *testing.T) {
		for i := 1; i <= history.MaxEntries+1; i++ {
			e := entry("dev-2", fmt.Sprintf("complaint %d", i), base.Add(time.Duration(i)*100*time.Millisecond))
			e.ID = history.EntryID(fmt.Sprintf("%c", 'z'-i))
			require.NoError(t, repo.Save(ctx, e))
		}

		got, err := repo.Recent(ctx, "dev-2", history.MaxEntries)
		require.NoError(t, err)
		require.Len(t, got, history.MaxEntries)
		assert.Equal(t, "complaint 11", got[0].Input)
		assert.Equal(t, "complaint 2", got[len(got)-1].Input, "complaint 1 was evicted despite its id sorting last")
	})
}

func TestCapIsPerSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < history.MaxEntries; i++ {
		require.NoError(t, repo.Save(ctx, entry("dev-1", "a", base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, repo.Save(ctx, entry("dev-2", "b", base)))

	got, err := repo.Recent(ctx, "dev-1", history.MaxEntries)
	require.NoError(t, err)
	assert.Len(t, got, history.MaxEntries)

	got, err = repo.Recent(ctx, "dev-2", history.MaxEntries)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCorruptRowIsSkipped(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, entry("dev-1", "good", base)))

	// Simulate a blob written by an older or broken build.
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO analysis_history (id, session_id, created_at, input, result_json) VALUES (?,?,?,?,?);`,
		uuid.New().String(), "dev-1", base.Add(time.Minute).UnixNano(), "bad", `{"summary": truncated`)
	require.NoError(t, err)

	got, err := repo.Recent(ctx, "dev-1", history.MaxEntries)
	require.NoError(t, err, "corrupt rows must never surface as an error")
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].Input)
}

func TestDeleteAndClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	first := entry("dev-1", "first", base)
	second := entry("dev-1", "second", base.Add(time.Minute))
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	require.NoError(t, repo.DeleteEntry(ctx, "dev-1", first.ID))
	got, err := repo.Recent(ctx, "dev-1", history.MaxEntries)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, second.ID, got[0].ID)

	// Deleting with the wrong session is a no-op.
	require.NoError(t, repo.DeleteEntry(ctx, "dev-2", second.ID))
	got, _ = repo.Recent(ctx, "dev-1", history.MaxEntries)
	assert.Len(t, got, 1)

	require.NoError(t, repo.ClearSession(ctx, "dev-1"))
	got, err = repo.Recent(ctx, "dev-1", history.MaxEntries)
	require.NoError(t, err)
	assert.Empty(t, got)
}
