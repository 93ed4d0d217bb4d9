package observability

import (
	"sync"
	"time"
)

// MockMetricsRegistry records counter increments in memory for assertions.
type MockMetricsRegistry struct {
	mu           sync.Mutex
	Requests     map[string]int // "endpoint method status"
	Evaluations  map[string]int // verdict
	Beneficiary  map[string]int // source
	Removals     map[string]int // "source outcome"
	RateLimited  map[string]int // endpoint
	Faults       int
	LatencyCalls int
}

// NewMockMetricsRegistry returns an empty recording registry.
func NewMockMetricsRegistry() *MockMetricsRegistry {
	return &MockMetricsRegistry{
		Requests:    make(map[string]int),
		Evaluations: make(map[string]int),
		Beneficiary: make(map[string]int),
		Removals:    make(map[string]int),
		RateLimited: make(map[string]int),
	}
}

func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint+" "+method+" "+status]++
}

func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LatencyCalls++
}

func (m *MockMetricsRegistry) IncrementRateLimitHits(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateLimited[endpoint]++
}

func (m *MockMetricsRegistry) IncrementEvaluations(verdict string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Evaluations[verdict]++
}

func (m *MockMetricsRegistry) IncrementBeneficiaries(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Beneficiary[source]++
}

func (m *MockMetricsRegistry) IncrementRemovals(source, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removals[source+" "+outcome]++
}

func (m *MockMetricsRegistry) IncrementEvaluationFaults() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Faults++
}
