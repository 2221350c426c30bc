// Package live keeps subscription-driven views consistent while the
// underlying document streams change.
package live

import (
	"sync"

	"github.com/storeadmin/backend/internal/domain/shared"
)

// SubscriptionSet owns the live subscriptions opened for one purpose, such
// as the product subscriptions of an order view. Replacing or closing the
// set cancels every subscription it owns and starts a new generation;
// callbacks compare the generation they were opened under with Current
// and drop their result when it no longer matches.
type SubscriptionSet struct {
	mu         sync.Mutex
	generation uint64
	subs       []shared.Unsubscribe
	closed     bool
}

// NewSubscriptionSet creates an empty open set
func NewSubscriptionSet() *SubscriptionSet {
	return &SubscriptionSet{}
}

// Replace cancels every owned subscription and returns the new generation
func (s *SubscriptionSet) Replace() uint64 {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.generation++
	s.closed = false
	gen := s.generation
	s.mu.Unlock()

	cancelAll(subs)
	return gen
}

// Add hands a subscription opened under gen to the set. When gen is no
// longer current or the set is closed the subscription is cancelled at once
// and Add returns false.
func (s *SubscriptionSet) Add(gen uint64, unsub shared.Unsubscribe) bool {
	if unsub == nil {
		return false
	}
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		unsub()
		return false
	}
	s.subs = append(s.subs, unsub)
	s.mu.Unlock()
	return true
}

// IsCurrent reports whether gen is the live generation of an open set
func (s *SubscriptionSet) IsCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && gen == s.generation
}

// Current returns the live generation
func (s *SubscriptionSet) Current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Len returns the number of owned subscriptions
func (s *SubscriptionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close cancels every owned subscription. Further Adds are cancelled
// immediately until the next Replace. Close is idempotent.
func (s *SubscriptionSet) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	if !s.closed {
		s.generation++
	}
	s.closed = true
	s.mu.Unlock()

	cancelAll(subs)
}

func cancelAll(subs []shared.Unsubscribe) {
	for _, unsub := range subs {
		unsub()
	}
}
