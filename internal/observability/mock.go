package observability

import (
	"sync"
	"time"
)

// MockMetricsRegistry counts calls so tests can assert on recorded metrics.
type MockMetricsRegistry struct {
	mu                sync.Mutex
	Requests          map[string]int // "endpoint method status"
	FlagEvaluations   map[string]int // "flag result"
	EgressAnnotations int
}

// NewMockMetricsRegistry creates an empty MockMetricsRegistry
func NewMockMetricsRegistry() *MockMetricsRegistry {
	return &MockMetricsRegistry{
		Requests:        make(map[string]int),
		FlagEvaluations: make(map[string]int),
	}
}

func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint+" "+method+" "+status]++
}

func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

func (m *MockMetricsRegistry) IncrementFlagEvaluations(flag, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlagEvaluations[flag+" "+result]++
}

func (m *MockMetricsRegistry) RecordFlagEvaluationLatency(flag string, duration time.Duration) {}

func (m *MockMetricsRegistry) IncrementEgressAnnotations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EgressAnnotations++
}
