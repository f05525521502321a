package llm

import (
	"context"
	"sync"
	"time"

	"github.com/selva-k-r/dbt-docgen/types"
)

// StubClient is a scripted Client for testing. It records which models
// were generated and tracks the peak number of concurrent Generate calls,
// which lets tests assert the pipeline's concurrency cap.
type StubClient struct {
	mu sync.Mutex

	// Results maps model name to a scripted result. Models without an
	// entry get a Success result echoing the model name.
	Results map[string]types.GenerationResult
	// Delay is held inside each Generate call, creating overlap so
	// concurrency observations are meaningful.
	Delay time.Duration

	calls    []string
	inFlight int
	peak     int
}

// Verify StubClient implements Client.
var _ Client = (*StubClient)(nil)

// NewStubClient creates a stub with scripted results.
func NewStubClient(results map[string]types.GenerationResult) *StubClient {
	return &StubClient{Results: results}
}

// Generate implements Client by returning the scripted result.
func (s *StubClient) Generate(ctx context.Context, record *types.ModelRecord) types.GenerationResult {
	s.mu.Lock()
	s.calls = append(s.calls, record.Name)
	s.inFlight++
	if s.inFlight > s.peak {
		s.peak = s.inFlight
	}
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
		}
	}

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()

	if res, ok := s.Results[record.Name]; ok {
		return res
	}
	return types.Success("Documentation for " + record.Name + ".")
}

// Calls returns the model names passed to Generate, in call order.
func (s *StubClient) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// PeakInFlight returns the maximum number of Generate calls that were
// outstanding simultaneously.
func (s *StubClient) PeakInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}
