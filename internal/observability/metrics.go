package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects per-module turn counters.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	modules map[string]*ModuleMetrics
}

// ModuleMetrics are the counters of one module.
type ModuleMetrics struct {
	executionCount atomic.Int64
	totalDuration  atomic.Int64 // milliseconds
	errorCount     atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		modules: make(map[string]*ModuleMetrics),
	}
}

// RecordRequest records a turn handled by module.
func (m *Metrics) RecordRequest(module string) {
	m.requestTotal.Add(1)
	m.getModuleMetrics(module).executionCount.Add(1)
}

// RecordFailure records a failed turn.
func (m *Metrics) RecordFailure(module string) {
	m.requestFailed.Add(1)
	m.getModuleMetrics(module).errorCount.Add(1)
}

// RecordDuration records how long a turn took.
func (m *Metrics) RecordDuration(module string, duration time.Duration) {
	m.getModuleMetrics(module).totalDuration.Add(duration.Milliseconds())
}

// GetRequestTotal returns the total number of turns.
func (m *Metrics) GetRequestTotal() int64 {
	return m.requestTotal.Load()
}

// GetRequestFailed returns the number of failed turns.
func (m *Metrics) GetRequestFailed() int64 {
	return m.requestFailed.Load()
}

func (m *Metrics) getModuleMetrics(module string) *ModuleMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	mm, ok := m.modules[module]
	if !ok {
		mm = &ModuleMetrics{}
		m.modules[module] = mm
	}
	return mm
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.modules = make(map[string]*ModuleMetrics)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	modules := make(map[string]*ModuleMetricsSnapshot, len(m.modules))
	for name, mm := range m.modules {
		count := mm.executionCount.Load()
		total := mm.totalDuration.Load()
		snap := &ModuleMetricsSnapshot{
			ExecutionCount: count,
			TotalDuration:  total,
			ErrorCount:     mm.errorCount.Load(),
		}
		if count > 0 {
			snap.AverageDuration = total / count
		}
		modules[name] = snap
	}

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Modules:       modules,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64                             `json:"requests_total"`
	RequestFailed int64                             `json:"requests_failed"`
	Modules       map[string]*ModuleMetricsSnapshot `json:"modules"`
}

// ModuleMetricsSnapshot represents metrics for a specific module.
type ModuleMetricsSnapshot struct {
	ExecutionCount  int64 `json:"count"`
	TotalDuration   int64 `json:"total_ms"`
	ErrorCount      int64 `json:"errors"`
	AverageDuration int64 `json:"avg_ms"`
}

// ModuleNames returns the recorded module names, sorted.
func (s *MetricsSnapshot) ModuleNames() []string {
	names := make([]string, 0, len(s.Modules))
	for name := range s.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
