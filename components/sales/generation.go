package sales

import (
	"context"
	"sync"
)

// Session serializes the fetches of one viewer. Each Fetch starts a new
// generation and cancels the fetch it supersedes; a superseded fetch returns
// ErrStale instead of its result.
type Session struct {
	fetcher Fetcher

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     Result
}

// NewSession wraps a fetcher with generation tracking.
func NewSession(fetcher Fetcher) *Session {
	return &Session{fetcher: fetcher}
}

// Fetch runs the query as the newest generation.
func (s *Session) Fetch(ctx context.Context, query Query) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.cancel = cancel
	s.mu.Unlock()

	result, err := s.fetcher.Fetch(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		cancel()
		return Result{}, ErrStale
	}
	s.cancel = nil
	cancel()
	result.Generation = gen
	if err == nil || result.Points != nil {
		s.latest = result
	}
	return result, err
}

// Latest returns the result of the newest completed generation.
func (s *Session) Latest() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Generation reports the most recently started generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
