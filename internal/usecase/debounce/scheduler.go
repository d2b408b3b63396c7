// Package debounce coalesces rapid repeated queries for the same key so only
// the latest one proceeds to a fan-out.
package debounce

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"
)

// Default delays, adaptive on normalized query length: short queries are
// noisier while the user is still typing, so they wait longer.
const (
	DefaultShortDelay  = 500 * time.Millisecond // <= 2 runes
	DefaultMediumDelay = 300 * time.Millisecond // 3-4 runes
	DefaultLongDelay   = 200 * time.Millisecond // >= 5 runes
)

// Scheduler tracks one pending wait per key. Scheduling a key again
// supersedes the pending wait for that key.
type Scheduler struct {
	shortDelay  time.Duration
	mediumDelay time.Duration
	longDelay   time.Duration

	mu      sync.Mutex
	pending map[string]chan struct{}
}

// NewScheduler creates a scheduler with the default delays.
func NewScheduler() *Scheduler {
	return &Scheduler{
		shortDelay:  DefaultShortDelay,
		mediumDelay: DefaultMediumDelay,
		longDelay:   DefaultLongDelay,
		pending:     make(map[string]chan struct{}),
	}
}

// WithDelays overrides the three delay tiers. Non-positive values keep the
// defaults.
func (s *Scheduler) WithDelays(short, medium, long time.Duration) *Scheduler {
	if short > 0 {
		s.shortDelay = short
	}
	if medium > 0 {
		s.mediumDelay = medium
	}
	if long > 0 {
		s.longDelay = long
	}
	return s
}

// Delay returns the debounce delay for a query, tiered on its rune count.
func (s *Scheduler) Delay(query string) time.Duration {
	switch n := utf8.RuneCountInString(query); {
	case n <= 2:
		return s.shortDelay
	case n <= 4:
		return s.mediumDelay
	default:
		return s.longDelay
	}
}

// Wait blocks until the debounce delay for query elapses and reports true, or
// returns false early when a later Wait for the same key supersedes this one
// or ctx is done. The key identifies the input source (so successive
// keystrokes supersede each other even though the query text differs); the
// delay adapts to the query length.
func (s *Scheduler) Wait(ctx context.Context, key, query string) bool {
	superseded := make(chan struct{})

	s.mu.Lock()
	if prev, ok := s.pending[key]; ok {
		close(prev)
	}
	s.pending[key] = superseded
	s.mu.Unlock()

	timer := time.NewTimer(s.Delay(query))
	defer timer.Stop()

	select {
	case <-timer.C:
		s.mu.Lock()
		// Still the latest waiter? Clear the slot so a later Wait starts fresh.
		if s.pending[key] == superseded {
			delete(s.pending, key)
		}
		s.mu.Unlock()
		return true
	case <-superseded:
		return false
	case <-ctx.Done():
		s.mu.Lock()
		if s.pending[key] == superseded {
			delete(s.pending, key)
		}
		s.mu.Unlock()
		return false
	}
}
