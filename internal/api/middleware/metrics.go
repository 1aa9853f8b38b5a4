package middleware

import (
	"net/http"
	"sync/atomic"
	"time"
)

// Metrics holds process-wide request counters.
type Metrics struct {
	Requests     atomic.Int64
	ClientErrors atomic.Int64
	ServerErrors atomic.Int64
	// LatencyMicros is the sum of request durations.
	LatencyMicros atomic.Int64
}

// Snapshot returns the counters as a JSON-friendly map.
func (m *Metrics) Snapshot() map[string]any {
	requests := m.Requests.Load()
	var avg float64
	if requests > 0 {
		avg = float64(m.LatencyMicros.Load()) / float64(requests) / 1000
	}
	return map[string]any{
		"request_count":      requests,
		"client_error_count": m.ClientErrors.Load(),
		"server_error_count": m.ServerErrors.Load(),
		"avg_latency_ms":     avg,
	}
}

// Middleware counts requests by outcome.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := record(w)
		next.ServeHTTP(rw, r)

		m.Requests.Add(1)
		m.LatencyMicros.Add(time.Since(start).Microseconds())
		switch {
		case rw.status >= 500:
			m.ServerErrors.Add(1)
		case rw.status >= 400:
			m.ClientErrors.Add(1)
		}
	})
}
