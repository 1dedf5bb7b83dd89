package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmclabs/medassist/internal/domain/analysis"
)

func sampleResult() *analysis.Result {
	return &analysis.Result{
		Summary:          "s",
		Considerations:   []string{"a"},
		RedFlagStatus:    analysis.StatusNormal,
		NextSteps:        "n",
		MedicalEducation: "m",
		Disclaimer:       analysis.Disclaimer,
	}
}

func TestBegin(t *testing.T) {
	t.Run("empty input is rejected", func(t *testing.T) {
		s := New("dev-1")
		_, _, err := s.Begin("   ")
		assert.ErrorIs(t, err, analysis.ErrEmptyInput)
		assert.False(t, s.Snapshot().InFlight)
	})

	t.Run("clears previous result and error", func(t *testing.T) {
		s := New("dev-1")
		_, gen, err := s.Begin("headache")
		require.NoError(t, err)
		require.True(t, s.Fail(gen, "boom"))

		_, _, err = s.Begin("headache again")
		require.NoError(t, err)
		snap := s.Snapshot()
		assert.True(t, snap.InFlight)
		assert.Empty(t, snap.LastError)
		assert.Nil(t, snap.Current)
	})

	t.Run("second begin while in flight is rejected", func(t *testing.T) {
		s := New("dev-1")
		_, _, err := s.Begin("headache")
		require.NoError(t, err)
		_, _, err = s.Begin("another")
		assert.ErrorIs(t, err, ErrInFlight)
	})

	t.Run("empty text falls back to dictated buffer", func(t *testing.T) {
		s := New("dev-1")
		s.StartDictation()
		require.NoError(t, s.DictationResult("sore throat"))
		input, _, err := s.Begin("")
		require.NoError(t, err)
		assert.Equal(t, "sore throat", input)
	})
}

func TestCompleteAndFail(t *testing.T) {
	t.Run("complete installs result", func(t *testing.T) {
		s := New("dev-1")
		_, gen, err := s.Begin("headache")
		require.NoError(t, err)
		require.True(t, s.Complete(gen, sampleResult()))

		snap := s.Snapshot()
		assert.False(t, snap.InFlight)
		assert.Empty(t, snap.LastError)
		require.NotNil(t, snap.Current)
		assert.Equal(t, "s", snap.Current.Summary)
	})

	t.Run("fail sets message and leaves current empty", func(t *testing.T) {
		s := New("dev-1")
		_, gen, err := s.Begin("headache")
		require.NoError(t, err)
		require.True(t, s.Fail(gen, "service unavailable"))

		snap := s.Snapshot()
		assert.False(t, snap.InFlight)
		assert.Equal(t, "service unavailable", snap.LastError)
		assert.Nil(t, snap.Current)
	})

	t.Run("inFlight and lastError never both set", func(t *testing.T) {
		s := New("dev-1")
		_, gen, _ := s.Begin("headache")
		s.Fail(gen, "x")
		snap := s.Snapshot()
		assert.False(t, snap.InFlight && snap.LastError != "")

		_, _, err := s.Begin("again")
		require.NoError(t, err)
		snap = s.Snapshot()
		assert.False(t, snap.InFlight && snap.LastError != "")
	})
}

func TestGenerationGuard(t *testing.T) {
	t.Run("clear during flight makes completion stale", func(t *testing.T) {
		s := New("dev-1")
		_, gen, err := s.Begin("headache")
		require.NoError(t, err)

		s.ClearCurrent()
		assert.False(t, s.Complete(gen, sampleResult()))

		snap := s.Snapshot()
		assert.Nil(t, snap.Current)
		assert.Empty(t, snap.Input)
		assert.False(t, snap.InFlight)
	})

	t.Run("stale failure is dropped too", func(t *testing.T) {
		s := New("dev-1")
		_, gen, err := s.Begin("headache")
		require.NoError(t, err)
		s.ClearCurrent()
		assert.False(t, s.Fail(gen, "late error"))
		assert.Empty(t, s.Snapshot().LastError)
	})
}

func TestClearCurrent(t *testing.T) {
	s := New("dev-1")
	_, gen, err := s.Begin("headache")
	require.NoError(t, err)
	require.True(t, s.Complete(gen, sampleResult()))

	s.ClearCurrent()
	snap := s.Snapshot()
	assert.Nil(t, snap.Current)
	assert.Empty(t, snap.LastError)
	assert.Empty(t, snap.Input)
}

func TestDictation(t *testing.T) {
	t.Run("recognized transcript appends with separator", func(t *testing.T) {
		s := New("dev-1")
		s.StartDictation()
		require.NoError(t, s.DictationResult("chest pain"))
		s.StartDictation()
		require.NoError(t, s.DictationResult("for twenty minutes"))
		assert.Equal(t, "chest pain for twenty minutes", s.Snapshot().Input)
	})

	t.Run("capture stops after one utterance", func(t *testing.T) {
		s := New("dev-1")
		s.StartDictation()
		require.NoError(t, s.DictationResult("hello"))
		assert.Equal(t, DictationIdle, s.Snapshot().Dictation)
	})

	t.Run("late transcript while idle is dropped", func(t *testing.T) {
		s := New("dev-1")
		err := s.DictationResult("stale words")
		assert.ErrorIs(t, err, ErrNotListening)
		assert.Empty(t, s.Snapshot().Input)
	})

	t.Run("stop returns to idle", func(t *testing.T) {
		s := New("dev-1")
		s.StartDictation()
		s.StopDictation()
		assert.Equal(t, DictationIdle, s.Snapshot().Dictation)
	})
}
