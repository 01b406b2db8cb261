package agent

import (
	"sync"
	"time"
)

// SeenEvents tracks which shutoff event ids have already produced
// alerts, so repeated sweeps stay quiet about events they have covered.
// Entries expire after a TTL and the registry is capped; when full,
// the oldest entry is evicted.
type SeenEvents struct {
	mu      sync.Mutex
	ttl     time.Duration
	cap     int
	entries map[string]time.Time
	now     func() time.Time
}

// NewSeenEvents builds a registry. ttl <= 0 defaults to 72h, cap <= 0
// to 10000.
func NewSeenEvents(ttl time.Duration, capacity int, now func() time.Time) *SeenEvents {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	if capacity <= 0 {
		capacity = 10000
	}
	if now == nil {
		now = time.Now
	}
	return &SeenEvents{
		ttl:     ttl,
		cap:     capacity,
		entries: make(map[string]time.Time),
		now:     now,
	}
}

// MarkNew reports whether the event id is new and records it. Expired
// entries count as new again.
func (s *SeenEvents) MarkNew(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if at, ok := s.entries[eventID]; ok && now.Sub(at) < s.ttl {
		return false
	}

	s.prune(now)
	s.entries[eventID] = now
	return true
}

// prune drops expired entries, then evicts the oldest if still at cap.
// Callers must hold mu.
func (s *SeenEvents) prune(now time.Time) {
	for id, at := range s.entries {
		if now.Sub(at) >= s.ttl {
			delete(s.entries, id)
		}
	}
	if len(s.entries) < s.cap {
		return
	}
	var oldestID string
	var oldestAt time.Time
	for id, at := range s.entries {
		if oldestID == "" || at.Before(oldestAt) {
			oldestID, oldestAt = id, at
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}

// Len reports the number of tracked events.
func (s *SeenEvents) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
