package api

import (
	"net/http"
	"slices"
	"sync"
	"time"
)

// latencyWindow is how many recent requests per route feed the percentiles.
const latencyWindow = 512

// RouteSummary is the /api/stats view of one route.
type RouteSummary struct {
	Requests int64   `json:"requests"`
	Errors   int64   `json:"errors"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	MaxMs    float64 `json:"max_ms"`
}

type routeLatency struct {
	requests int64
	errors   int64
	recent   []time.Duration // ring of the last latencyWindow durations
	next     int
}

func (rl *routeLatency) observe(d time.Duration, status int) {
	rl.requests++
	if status >= http.StatusInternalServerError {
		rl.errors++
	}
	if len(rl.recent) < latencyWindow {
		rl.recent = append(rl.recent, d)
		return
	}
	rl.recent[rl.next] = d
	rl.next = (rl.next + 1) % latencyWindow
}

func (rl *routeLatency) summary() RouteSummary {
	sorted := slices.Clone(rl.recent)
	slices.Sort(sorted)
	return RouteSummary{
		Requests: rl.requests,
		Errors:   rl.errors,
		P50Ms:    millis(nearestRank(sorted, 50)),
		P95Ms:    millis(nearestRank(sorted, 95)),
		MaxMs:    millis(nearestRank(sorted, 100)),
	}
}

// nearestRank returns the smallest value with at least pct percent of sorted at or
// below it.
func nearestRank(sorted []time.Duration, pct int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := max(1, (pct*len(sorted)+99)/100)
	return sorted[rank-1]
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// RouteStats aggregates request latency per "METHOD pattern".
type RouteStats struct {
	mu     sync.Mutex
	routes map[string]*routeLatency
}

func NewRouteStats() *RouteStats {
	return &RouteStats{routes: make(map[string]*routeLatency)}
}

// Observe records one request against route.
func (rs *RouteStats) Observe(route string, d time.Duration, status int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rl, ok := rs.routes[route]
	if !ok {
		rl = &routeLatency{}
		rs.routes[route] = rl
	}
	rl.observe(max(d, 0), status)
}

func (rs *RouteStats) Summary() map[string]RouteSummary {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make(map[string]RouteSummary, len(rs.routes))
	for route, rl := range rs.routes {
		out[route] = rl.summary()
	}
	return out
}
