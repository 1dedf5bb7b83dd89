package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kmclabs/medassist/internal/application/consult"
	"github.com/kmclabs/medassist/internal/content"
	"github.com/kmclabs/medassist/internal/domain/analysis"
	"github.com/kmclabs/medassist/internal/domain/history"
	"github.com/kmclabs/medassist/internal/domain/session"
	"github.com/kmclabs/medassist/internal/infra/storage"
	"github.com/kmclabs/medassist/internal/middleware"
	"github.com/kmclabs/medassist/internal/report"
)

// Deps carries everything the router serves.
type Deps struct {
	Consult        *consult.Service
	Archive        *storage.Store // nil when object storage is not configured
	Limiter        *middleware.RateLimiter
	Log            *zap.Logger
	FrontendOrigin string
	Health         map[string]middleware.HealthChecker
}

type Router struct {
	svc     *consult.Service
	archive *storage.Store
	log     *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{svc: d.Consult, archive: d.Archive, log: log}
	mux := chi.NewRouter()

	origins := []string{"*"}
	if d.FrontendOrigin != "" {
		origins = []string{d.FrontendOrigin}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Logging(log))
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(d.Health))
	mux.Get("/metrics", middleware.MetricsHandler())
	mux.Get("/v1/content", r.wrap(r.handleContent))

	mux.Route("/v1/sessions/{session}", func(rt chi.Router) {
		if d.Limiter != nil {
			rt.With(d.Limiter.Limit).Post("/analyze", r.wrap(r.handleAnalyze))
		} else {
			rt.Post("/analyze", r.wrap(r.handleAnalyze))
		}
		rt.Get("/state", r.wrap(r.handleState))
		rt.Post("/clear", r.wrap(r.handleClear))
		rt.Get("/history", r.wrap(r.handleHistory))
		rt.Delete("/history", r.wrap(r.handleClearHistory))
		rt.Delete("/history/{id}", r.wrap(r.handleDeleteEntry))
		rt.Post("/dictation/start", r.wrap(r.handleDictationStart))
		rt.Post("/dictation/result", r.wrap(r.handleDictationResult))
		rt.Post("/dictation/stop", r.wrap(r.handleDictationStop))
		rt.Get("/report", r.wrap(r.handleReport))
		rt.Post("/report/archive", r.wrap(r.handleArchiveReport))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain errors onto HTTP statuses. The three gateway failure
// kinds all surface the same collapsed message; the kind field keeps them
// distinguishable.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, analysis.ErrEmptyInput):
			writeError(w, http.StatusBadRequest, "Please describe your symptoms first.", "input_empty")
		case errors.Is(err, middleware.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, err.Error(), "invalid_request")
		case errors.Is(err, session.ErrInFlight):
			writeError(w, http.StatusConflict, "An analysis is already running for this session.", "in_flight")
		case errors.Is(err, session.ErrStale):
			writeError(w, http.StatusConflict, "The request was cleared before the analysis finished.", "superseded")
		case errors.Is(err, session.ErrNotListening):
			writeError(w, http.StatusConflict, "Dictation is not active.", "not_listening")
		case errors.Is(err, analysis.ErrUpstreamRejected):
			writeError(w, http.StatusBadGateway, "Failed to analyze symptoms. Please try again.", "upstream_rejected")
		case errors.Is(err, analysis.ErrMalformedResponse):
			writeError(w, http.StatusBadGateway, "Failed to analyze symptoms. Please try again.", "malformed_response")
		case errors.Is(err, analysis.ErrNetwork):
			writeError(w, http.StatusBadGateway, "Failed to analyze symptoms. Please try again.", "network_error")
		case errors.Is(err, session.ErrNoResult):
			writeError(w, http.StatusNotFound, "No analysis result to report yet.", "no_result")
		default:
			r.log.Error("handler error", zap.String("path", req.URL.Path), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error(), "internal")
		}
	}
}

func writeError(w http.ResponseWriter, code int, message, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "kind": kind})
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func sessionID(req *http.Request) (string, error) {
	id := chi.URLParam(req, "session")
	if err := middleware.ValidateSessionID(id); err != nil {
		return "", err
	}
	return id, nil
}

// POST /v1/sessions/{session}/analyze
// Body: {"text": "<symptoms and history>"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	sid, err := sessionID(req)
	if err != nil {
		return err
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: decode body: %v", middleware.ErrInvalidRequest, err)
	}
	if err := middleware.ValidateInputText(body.Text); err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	result, err := r.svc.Analyze(req.Context(), sid, body.Text)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	middleware.IncrementAnalysesSuccess()

	return writeJSON(w, http.StatusOK, result)
}

// GET /v1/sessions/{session}/state
func (r *Router) handleState(w http.ResponseWriter, req *http.Request) error {
	sid, err := sessionID(req)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, r.svc.Session(sid).Snapshot())
}

// POST /v1/sessions/{session}/clear
func (r *Router) handleClear(w http.ResponseWriter, req *http.Request) error {
	sid, err := sessionID(req)
	if err != nil {
		return err
	}
	r.svc.Clear(sid)
	return writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// GET /v1/sessions/{session}/history
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	sid, err := sessionID(req)
	if err != nil {
		return err
	}
	entries, err := r.svc.History(req.Context(), sid)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, entries)
}

// DELETE /v1/sessions/{session}/history
func (r *Router) handleClearHistory(w http.ResponseWriter, req *http.Request) error {
	sid, err := sessionID(req)
	if err != nil {
		return err
	}
	if err := r.svc.ClearHistory(req.Context(), sid); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// DELETE /v1/sessions/{session}/history/{id}
func (r *Router) handleDeleteEntry(w http.ResponseWriter, req *http.Request) error {
	sid, err := sessionID(req)
	if err != nil {
		return err
	}
	id := chi.URLParam(req, "id")
	if id == "" {
		return fmt.Errorf("%w: entry id is required", middleware.ErrInvalidRequest)
	}
	if err := r.svc.DeleteEntry(req.Context(), sid, history.EntryID(id)); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// POST /v1/sessions/{session}/dictation/start
func (r *Router) handleDictationStart(w http.ResponseWriter, req *http.Request) error {
	sid, err := sessionID(req)
	if err != nil {
		return err
	}
	sess := r.svc.Session(sid)
	sess.StartDictation()
	return writeJSON(w, http.StatusOK, map[string]string{
		"dictation": string(session.DictationListening),
		"locale":    session.DictationLocale,
	})
}

// POST /v1/sessions/{session}/dictation/result
// Body: {"transcript": "..."}
func (r *Router) handleDictationResult(w http.ResponseWriter, req *http.Request) error {
	sid, err := sessionID(req)
	if err != nil {
		return err
	}
	var body struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: decode body: %v", middleware.ErrInvalidRequest, err)
	}
	sess := r.svc.Session(sid)
	if err := sess.DictationResult(body.Transcript); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, sess.Snapshot())
}

// POST /v1/sessions/{session}/dictation/stop
func (r *Router) handleDictationStop(w http.ResponseWriter, req *http.Request) error {
	sid, err := sessionID(req)
	if err != nil {
		return err
	}
	r.svc.Session(sid).StopDictation()
	return writeJSON(w, http.StatusOK, map[string]string{"dictation": string(session.DictationIdle)})
}

// GET /v1/sessions/{session}/report
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	sid, err := sessionID(req)
	if err != nil {
		return err
	}
	doc, err := r.renderReport(sid)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(doc)
	return err
}

// POST /v1/sessions/{session}/report/archive
func (r *Router) handleArchiveReport(w http.ResponseWriter, req *http.Request) error {
	sid, err := sessionID(req)
	if err != nil {
		return err
	}
	if r.archive == nil {
		writeError(w, http.StatusNotImplemented, "report archive is not configured", "archive_disabled")
		return nil
	}
	doc, err := r.renderReport(sid)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(req.Context(), 30*time.Second)
	defer cancel()
	key := fmt.Sprintf("reports/%s/%d.html", sid, time.Now().UTC().UnixNano())
	url, err := r.archive.Upload(ctx, key, doc, "text/html")
	if err != nil {
		return fmt.Errorf("archive report: %w", err)
	}
	return writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (r *Router) renderReport(sid string) ([]byte, error) {
	snap := r.svc.Session(sid).Snapshot()
	if snap.Current == nil {
		return nil, session.ErrNoResult
	}
	return report.Render(snap.Input, snap.Current, time.Now().UTC())
}

// GET /v1/content
func (r *Router) handleContent(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, content.Full())
}
