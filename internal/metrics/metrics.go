package metrics

import (
	"sort"
	"sync"
)

// Counter names tallied by the engine and its adapters. The engine itself
// never owns counter state; callers inject a Recorder and decide where the
// tallies end up.
const (
	CounterForecastRuns    = "forecast_runs"
	CounterCausalityTests  = "causality_tests"
	CounterCausalityCells  = "causality_cells"
	CounterAnomalyScans    = "anomaly_scans"
	CounterRiskTimelines   = "risk_timelines"
	CounterMissingPoints   = "missing_points"
	CounterSeriesImported  = "series_imported"
	CounterReportsRendered = "reports_rendered"
)

// Recorder is the observability collaborator passed into engine calls.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Inc(name string)
	Add(name string, delta int64)
}

// Registry is the default in-memory Recorder. Counts are purely diagnostic;
// nothing in the engine reads them back.
type Registry struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewRegistry creates an empty counter registry.
func NewRegistry() *Registry {
	return &Registry{counts: make(map[string]int64)}
}

// Inc increments a counter by one.
func (r *Registry) Inc(name string) {
	r.Add(name, 1)
}

// Add increments a counter by delta.
func (r *Registry) Add(name string, delta int64) {
	r.mu.Lock()
	r.counts[name] += delta
	r.mu.Unlock()
}

// Snapshot returns a copy of all counters for serving on the ops endpoint.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Names returns the sorted counter names currently present.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.counts))
	for k := range r.counts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Nop is a Recorder that discards every tally. Used when a caller does not
// care about observability (tests, one-shot CLI runs).
type Nop struct{}

func (Nop) Inc(string)        {}
func (Nop) Add(string, int64) {}
