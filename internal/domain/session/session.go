package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/kmclabs/medassist/internal/domain/analysis"
)

var (
	// ErrInFlight indicates an analysis is already running for the session.
	ErrInFlight = errors.New("analysis already in flight")

	// ErrStale indicates a gateway reply arrived after the session was
	// cleared; its result is discarded.
	ErrStale = errors.New("analysis superseded")

	// ErrNoResult indicates the session has no current result to act on.
	ErrNoResult = errors.New("no analysis result available")
)

// Session holds the transient per-device state: the current result, the
// pending input buffer, the in-flight flag, the last failure message and the
// dictation machine. History is not held here; it lives in the repository.
//
// All transitions go through the mutex. A generation counter guards
// completion: Begin bumps it, and a Complete or Fail carrying a stale
// generation is dropped so a late reply never resurrects cleared state.
type Session struct {
	mu sync.Mutex

	id         string
	input      string
	current    *analysis.Result
	lastError  string
	inFlight   bool
	generation uint64
	dictation  DictationState
}

func New(id string) *Session {
	return &Session{id: id, dictation: DictationIdle}
}

func (s *Session) ID() string { return s.id }

// Snapshot is a copy of the session state safe to hand to the render layer.
type Snapshot struct {
	ID        string           `json:"id"`
	Input     string           `json:"input"`
	Current   *analysis.Result `json:"current,omitempty"`
	LastError string           `json:"last_error,omitempty"`
	InFlight  bool             `json:"in_flight"`
	Dictation DictationState   `json:"dictation"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:        s.id,
		Input:     s.input,
		LastError: s.lastError,
		InFlight:  s.inFlight,
		Dictation: s.dictation,
	}
	if s.current != nil {
		snap.Current = s.current.Clone()
	}
	return snap
}

// Begin starts an analysis. A non-empty text replaces the pending input
// buffer; an empty text falls back to whatever dictation accumulated. It
// clears the current result and last error, marks the session in flight and
// returns the generation the eventual Complete/Fail must present.
func (s *Session) Begin(text string) (input string, generation uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return "", 0, ErrInFlight
	}
	text = strings.TrimSpace(text)
	if text != "" {
		s.input = text
	}
	if strings.TrimSpace(s.input) == "" {
		return "", 0, analysis.ErrEmptyInput
	}
	s.generation++
	s.inFlight = true
	s.current = nil
	s.lastError = ""
	return s.input, s.generation, nil
}

// Complete installs the result for the given generation. A stale generation
// is ignored and reported false.
func (s *Session) Complete(generation uint64, r *analysis.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.current = r
	s.lastError = ""
	s.inFlight = false
	return true
}

// Fail records a failure message for the given generation. A stale
// generation is ignored and reported false.
func (s *Session) Fail(generation uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return false
	}
	s.lastError = message
	s.inFlight = false
	return true
}

// ClearCurrent drops the current result, the last error and the pending
// input. It also bumps the generation so an in-flight reply lands stale.
// History is untouched.
func (s *Session) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.lastError = ""
	s.input = ""
	s.generation++
	s.inFlight = false
}

// Current returns a copy of the current result, or nil.
func (s *Session) Current() *analysis.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.Clone()
}
