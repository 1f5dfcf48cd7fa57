package usage

import (
	"sort"
	"sync"
)

// #region snapshot
// Snapshot is an immutable copy of usage counts keyed by record id.
type Snapshot map[int]int

// Count returns the count for id, zero when unseen.
func (s Snapshot) Count(id int) int { return s[id] }

// Total returns the sum of all counts.
func (s Snapshot) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// Entry is one record's count in a sorted report.
type Entry struct {
	ID    int `json:"id"`
	Count int `json:"count"`
}

// Sorted lists counts by descending count, then ascending id.
func (s Snapshot) Sorted() []Entry {
	out := make([]Entry, 0, len(s))
	for id, c := range s {
		out = append(out, Entry{ID: id, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// #endregion snapshot

// #region statistics
// Statistics counts how often each record was chosen as primary. It is
// process-scoped, never persisted, and safe for concurrent use.
type Statistics struct {
	mu     sync.Mutex
	counts map[int]int
}

// NewStatistics creates an empty counter set.
func NewStatistics() *Statistics {
	return &Statistics{counts: make(map[int]int)}
}

// Record increments the count for id by one.
func (s *Statistics) Record(id int) {
	s.mu.Lock()
	s.counts[id]++
	s.mu.Unlock()
}

// Snapshot copies the current counts.
func (s *Statistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(Snapshot, len(s.counts))
	for id, c := range s.counts {
		out[id] = c
	}
	return out
}

// Reset clears all counts.
func (s *Statistics) Reset() {
	s.mu.Lock()
	s.counts = make(map[int]int)
	s.mu.Unlock()
}

// #endregion statistics
