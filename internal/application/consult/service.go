package consult

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kmclabs/medassist/internal/application"
	"github.com/kmclabs/medassist/internal/domain/analysis"
	"github.com/kmclabs/medassist/internal/domain/history"
	"github.com/kmclabs/medassist/internal/domain/session"
)

const (
	sessionIdleTTL     = time.Hour
	sessionSweepPeriod = 10 * time.Minute
)

// Service implements the analysis use-cases. It owns the per-device session
// objects and drives the gateway call, the state transitions and history
// persistence. Safe for concurrent use.
//
// Session ids are client-chosen, so the session map is bounded by idle
// eviction: a session untouched for sessionIdleTTL is dropped. History
// survives eviction; only the transient state goes.
type Service struct {
	Analyzer analysis.Analyzer
	Repo     history.Repository
	Clock    application.Clock
	Log      *zap.Logger
	Timeout  time.Duration // upper bound on one gateway call; 0 means none

	mu       sync.Mutex
	sessions map[string]*session.Session
	lastSeen map[string]time.Time
}

func NewService(gw analysis.Analyzer, repo history.Repository, clock application.Clock, log *zap.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		Analyzer: gw,
		Repo:     repo,
		Clock:    clock,
		Log:      log,
		sessions: make(map[string]*session.Session),
		lastSeen: make(map[string]time.Time),
	}
	go s.sweepIdleSessions()
	return s
}

// Session returns the live session for the device key, creating it on first
// use.
func (s *Service) Session(id string) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = session.New(id)
		s.sessions[id] = sess
	}
	s.lastSeen[id] = s.Clock.Now()
	return sess
}

func (s *Service) sweepIdleSessions() {
	ticker := time.NewTicker(sessionSweepPeriod)
	defer ticker.Stop()
	for range ticker.C {
		s.evictIdle(s.Clock.Now().Add(-sessionIdleTTL))
	}
}

// evictIdle drops sessions untouched since the cutoff. A session with an
// analysis still in flight is kept so the completion has somewhere to land.
func (s *Service) evictIdle(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, seen := range s.lastSeen {
		if !seen.Before(cutoff) {
			continue
		}
		if sess := s.sessions[id]; sess != nil && sess.Snapshot().InFlight {
			continue
		}
		delete(s.sessions, id)
		delete(s.lastSeen, id)
	}
}

// Analyze runs one full analysis cycle for the session: Begin, gateway
// call, Complete or Fail, history append. The order matters: the entry is
// appended only after a successful, normalized result, and a failure leaves
// history untouched.
func (s *Service) Analyze(ctx context.Context, sessionID, text string) (*analysis.Result, error) {
	sess := s.Session(sessionID)

	input, gen, err := sess.Begin(text)
	if err != nil {
		return nil, err
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	result, err := s.Analyzer.Analyze(ctx, input)
	if err != nil {
		if !sess.Fail(gen, userMessage(err)) {
			s.Log.Debug("dropping stale analysis failure", zap.String("session", sessionID))
		}
		return nil, err
	}

	if !sess.Complete(gen, result) {
		// The session was cleared while the call was in flight. The reply
		// is stale: do not store it, do not append history.
		s.Log.Debug("dropping stale analysis result", zap.String("session", sessionID))
		return nil, session.ErrStale
	}

	entry := &history.Entry{
		ID:        history.EntryID(uuid.New().String()),
		SessionID: sessionID,
		CreatedAt: s.Clock.Now().UTC(),
		Input:     input,
		Result:    result.Clone(),
	}
	if err := s.Repo.Save(ctx, entry); err != nil {
		// Persistence trouble never fails the analysis the user can see.
		s.Log.Warn("history save failed", zap.String("session", sessionID), zap.Error(err))
	}

	return result, nil
}

// History returns the persisted entries for the session, newest first,
// capped at history.MaxEntries.
func (s *Service) History(ctx context.Context, sessionID string) ([]*history.Entry, error) {
	return s.Repo.Recent(ctx, sessionID, history.MaxEntries)
}

// DeleteEntry removes one entry by explicit user action.
func (s *Service) DeleteEntry(ctx context.Context, sessionID string, id history.EntryID) error {
	return s.Repo.DeleteEntry(ctx, sessionID, id)
}

// ClearHistory removes every entry of the session.
func (s *Service) ClearHistory(ctx context.Context, sessionID string) error {
	return s.Repo.ClearSession(ctx, sessionID)
}

// Clear drops the session's current result, error and pending input,
// leaving history alone.
func (s *Service) Clear(sessionID string) {
	s.Session(sessionID).ClearCurrent()
}

// userMessage collapses the failure taxonomy into the single message the
// render layer shows. The distinct sentinels stay observable via errors.Is.
func userMessage(err error) string {
	switch {
	case errors.Is(err, analysis.ErrUpstreamRejected):
		return "The analysis service declined the request. Please try again."
	case errors.Is(err, analysis.ErrMalformedResponse):
		return "The analysis service returned an unusable reply. Please try again."
	default:
		return "Failed to analyze symptoms. Please try again."
	}
}
