package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application counters
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	AnalysesTotal      uint64
	AnalysesSuccess    uint64
	AnalysesFailed     uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

func IncrementAnalyses() {
	atomic.AddUint64(&globalMetrics.AnalysesTotal, 1)
}

func IncrementAnalysesSuccess() {
	atomic.AddUint64(&globalMetrics.AnalysesSuccess, 1)
}

func IncrementAnalysesFailed() {
	atomic.AddUint64(&globalMetrics.AnalysesFailed, 1)
}

// MetricsMiddleware counts requests
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()
		next.ServeHTTP(w, r)
	})
}

// MetricsHandler exposes counters and runtime stats as JSON
func MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		out := map[string]any{
			"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
			"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
			"analyses_total":       atomic.LoadUint64(&globalMetrics.AnalysesTotal),
			"analyses_success":     atomic.LoadUint64(&globalMetrics.AnalysesSuccess),
			"analyses_failed":      atomic.LoadUint64(&globalMetrics.AnalysesFailed),
			"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
			"goroutines":           runtime.NumGoroutine(),
			"heap_alloc_bytes":     m.HeapAlloc,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}
