package monitor

import (
	"sync"
	"time"
)

// processedSet tracks alert identifiers the entry pass has already
// evaluated. Entries age out after the TTL so the set stays bounded in a
// long-running process; an alert still active after eviction simply gets
// re-evaluated, which the gates make harmless.
type processedSet struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]time.Time
}

func newProcessedSet(ttl time.Duration) *processedSet {
	return &processedSet{ttl: ttl, m: make(map[string]time.Time)}
}

func (s *processedSet) Seen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen, ok := s.m[id]
	if !ok {
		return false
	}
	if s.ttl > 0 && time.Since(seen) > s.ttl {
		delete(s.m, id)
		return false
	}
	return true
}

func (s *processedSet) Mark(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = time.Now()
}

// Prune drops every expired entry. Called once per monitor cycle.
func (s *processedSet) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.ttl)
	for id, seen := range s.m {
		if seen.Before(cutoff) {
			delete(s.m, id)
		}
	}
}

func (s *processedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *processedSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[string]time.Time)
}

func (s *processedSet) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = ttl
}
