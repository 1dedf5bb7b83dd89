package consult

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmclabs/medassist/internal/domain/analysis"
	"github.com/kmclabs/medassist/internal/domain/history"
	"github.com/kmclabs/medassist/internal/domain/session"
)

// fakeAnalyzer returns a canned result or error.
type fakeAnalyzer struct {
	result *analysis.Result
	err    error
	calls  int
	hook   func() // runs before returning, for mid-flight interference
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) (*analysis.Result, error) {
	f.calls++
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	r := f.result.Clone()
	r.Summary = text
	if err := r.Normalize(); err != nil {
		return nil, err
	}
	return r, nil
}

// memRepo is an in-memory history.Repository honoring the cap, newest first.
type memRepo struct {
	entries map[string][]*history.Entry // newest first
	saveErr error
}

func newMemRepo() *memRepo {
	return &memRepo{entries: make(map[string][]*history.Entry)}
}

func (m *memRepo) Save(ctx context.Context, e *history.Entry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	list := append([]*history.Entry{e}, m.entries[e.SessionID]...)
	if len(list) > history.MaxEntries {
		list = list[:history.MaxEntries]
	}
	m.entries[e.SessionID] = list
	return nil
}

func (m *memRepo) Recent(ctx context.Context, sessionID string, limit int) ([]*history.Entry, error) {
	list := m.entries[sessionID]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]*history.Entry, len(list))
	copy(out, list)
	return out, nil
}

func (m *memRepo) DeleteEntry(ctx context.Context, sessionID string, id history.EntryID) error {
	list := m.entries[sessionID]
	for i, e := range list {
		if e.ID == id {
			m.entries[sessionID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memRepo) ClearSession(ctx context.Context, sessionID string) error {
	delete(m.entries, sessionID)
	return nil
}

func (m *memRepo) Ping(ctx context.Context) error { return nil }
func (m *memRepo) Close() error                   { return nil }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func normalResult() *analysis.Result {
	return &analysis.Result{
		Summary:          "placeholder",
		Considerations:   []string{"Tension headache"},
		RedFlagStatus:    analysis.StatusNormal,
		NextSteps:        "Rest and hydrate.",
		MedicalEducation: "Most headaches are benign.",
	}
}

func newTestService(gw analysis.Analyzer, repo history.Repository) *Service {
	return NewService(gw, repo, fixedClock{t: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)}, nil)
}

func TestAnalyze_SuccessAppendsHistory(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(&fakeAnalyzer{result: normalResult()}, repo)

	res, err := svc.Analyze(context.Background(), "dev-1", "mild headache")
	require.NoError(t, err)
	assert.Equal(t, analysis.Disclaimer, res.Disclaimer)

	entries, err := svc.History(context.Background(), "dev-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mild headache", entries[0].Input)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].CreatedAt.IsZero())

	snap := svc.Session("dev-1").Snapshot()
	assert.False(t, snap.InFlight)
	require.NotNil(t, snap.Current)
}

func TestAnalyze_HistoryCapAndOrder(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(&fakeAnalyzer{result: normalResult()}, repo)

	for i := 1; i <= 11; i++ {
		_, err := svc.Analyze(context.Background(), "dev-1", fmt.Sprintf("complaint %d", i))
		require.NoError(t, err)

		entries, err := svc.History(context.Background(), "dev-1")
		require.NoError(t, err)
		want := i
		if want > history.MaxEntries {
			want = history.MaxEntries
		}
		assert.Len(t, entries, want)
		assert.Equal(t, fmt.Sprintf("complaint %d", i), entries[0].Input)
	}

	// The 11th insert evicted "complaint 1".
	entries, err := svc.History(context.Background(), "dev-1")
	require.NoError(t, err)
	require.Len(t, entries, history.MaxEntries)
	assert.Equal(t, "complaint 2", entries[len(entries)-1].Input)
}

func TestAnalyze_FailureLeavesHistoryUntouched(t *testing.T) {
	repo := newMemRepo()
	good := &fakeAnalyzer{result: normalResult()}
	svc := newTestService(good, repo)
	_, err := svc.Analyze(context.Background(), "dev-1", "first complaint")
	require.NoError(t, err)

	svc.Analyzer = &fakeAnalyzer{err: fmt.Errorf("%w: quota", analysis.ErrUpstreamRejected)}
	_, err = svc.Analyze(context.Background(), "dev-1", "second complaint")
	assert.ErrorIs(t, err, analysis.ErrUpstreamRejected)

	entries, err := svc.History(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	snap := svc.Session("dev-1").Snapshot()
	assert.Nil(t, snap.Current)
	assert.NotEmpty(t, snap.LastError)
	assert.False(t, snap.InFlight)
}

func TestAnalyze_EmergencyScenario(t *testing.T) {
	repo := newMemRepo()
	emergency := normalResult()
	emergency.RedFlagStatus = analysis.StatusEmergency
	emergency.RedFlagDetails = "Chest pain with dyspnea."
	svc := newTestService(&fakeAnalyzer{result: emergency}, repo)

	res, err := svc.Analyze(context.Background(), "dev-1", "severe chest pain and shortness of breath for 20 minutes")
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusEmergency, res.RedFlagStatus)
	assert.True(t, res.IsEmergencyOverride)

	entries, err := svc.History(context.Background(), "dev-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Result.IsEmergencyOverride)
}

func TestAnalyze_ClearDuringFlightDropsResult(t *testing.T) {
	repo := newMemRepo()
	gw := &fakeAnalyzer{result: normalResult()}
	svc := newTestService(gw, repo)
	gw.hook = func() { svc.Clear("dev-1") }

	_, err := svc.Analyze(context.Background(), "dev-1", "headache")
	assert.ErrorIs(t, err, session.ErrStale)

	entries, err := svc.History(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Empty(t, entries, "stale result must not enter history")
	assert.Nil(t, svc.Session("dev-1").Current())
}

func TestAnalyze_SaveFailureDoesNotFailAnalysis(t *testing.T) {
	repo := newMemRepo()
	repo.saveErr = fmt.Errorf("disk full")
	svc := newTestService(&fakeAnalyzer{result: normalResult()}, repo)

	res, err := svc.Analyze(context.Background(), "dev-1", "headache")
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	repo := newMemRepo()
	gw := &fakeAnalyzer{result: normalResult()}
	svc := newTestService(gw, repo)

	_, err := svc.Analyze(context.Background(), "dev-1", "   ")
	assert.ErrorIs(t, err, analysis.ErrEmptyInput)
	assert.Zero(t, gw.calls, "empty input must not reach the gateway")
}

func TestEvictIdleSessions(t *testing.T) {
	t.Run("idle sessions are dropped, history survives", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(&fakeAnalyzer{result: normalResult()}, repo)

		_, err := svc.Analyze(context.Background(), "dev-1", "headache")
		require.NoError(t, err)
		svc.Session("dev-2")

		svc.evictIdle(svc.Clock.Now().Add(time.Minute))

		svc.mu.Lock()
		assert.Empty(t, svc.sessions)
		assert.Empty(t, svc.lastSeen)
		svc.mu.Unlock()

		entries, err := svc.History(context.Background(), "dev-1")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("recent sessions are kept", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(&fakeAnalyzer{result: normalResult()}, repo)
		svc.Session("dev-1")

		svc.evictIdle(svc.Clock.Now().Add(-time.Minute))

		svc.mu.Lock()
		assert.Len(t, svc.sessions, 1)
		svc.mu.Unlock()
	})

	t.Run("in-flight session survives eviction", func(t *testing.T) {
		repo := newMemRepo()
		gw := &fakeAnalyzer{result: normalResult()}
		svc := newTestService(gw, repo)
		gw.hook = func() { svc.evictIdle(svc.Clock.Now().Add(time.Minute)) }

		res, err := svc.Analyze(context.Background(), "dev-1", "headache")
		require.NoError(t, err)
		assert.NotNil(t, res)

		snap := svc.Session("dev-1").Snapshot()
		require.NotNil(t, snap.Current, "completion must land in the surviving session")
	})
}

func TestDeleteAndClearHistory(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(&fakeAnalyzer{result: normalResult()}, repo)

	_, err := svc.Analyze(context.Background(), "dev-1", "one")
	require.NoError(t, err)
	_, err = svc.Analyze(context.Background(), "dev-1", "two")
	require.NoError(t, err)

	entries, _ := svc.History(context.Background(), "dev-1")
	require.Len(t, entries, 2)

	require.NoError(t, svc.DeleteEntry(context.Background(), "dev-1", entries[0].ID))
	entries, _ = svc.History(context.Background(), "dev-1")
	require.Len(t, entries, 1)

	require.NoError(t, svc.ClearHistory(context.Background(), "dev-1"))
	entries, _ = svc.History(context.Background(), "dev-1")
	assert.Empty(t, entries)
}
