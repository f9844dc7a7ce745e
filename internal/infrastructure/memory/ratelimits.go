// Package memory holds in-process store implementations used by tests and
// local development without AWS.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/go-notify-dispatch/internal/domain"
)

// RateLimitStore is an in-memory fixed-window counter store. The mutex makes
// Admit a single atomic increment-and-check, matching the DynamoDB
// implementation's conditional-update semantics.
type RateLimitStore struct {
	mu     sync.Mutex
	states map[string]*domain.RateLimitState
}

func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{states: make(map[string]*domain.RateLimitState)}
}

func (s *RateLimitStore) Admit(_ context.Context, key string, now time.Time, window time.Duration, capacity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nowMs := now.UnixMilli()
	st, ok := s.states[key]
	if !ok || nowMs-st.WindowStart > window.Milliseconds() {
		s.states[key] = &domain.RateLimitState{Key: key, WindowStart: nowMs, Count: 1}
		return true, nil
	}
	if st.Count >= capacity {
		return false, nil
	}
	st.Count++
	return true, nil
}

func (s *RateLimitStore) Get(_ context.Context, key string) (*domain.RateLimitState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *st
	return &cp, nil
}
