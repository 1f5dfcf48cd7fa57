package orchestrator

import (
	"sync"
	"time"
)

// #region history

// History is a bounded FIFO of recent analyses.
type History struct {
	mu      sync.Mutex
	entries []HistoryEntry
	start   int
	size    int
}

// NewHistory creates a history holding at most size entries.
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{entries: make([]HistoryEntry, 0, size), size: size}
}

// Add appends e, evicting the oldest entry when full.
func (h *History) Add(e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < h.size {
		h.entries = append(h.entries, e)
		return
	}
	h.entries[h.start] = e
	h.start = (h.start + 1) % h.size
}

// Entries returns the entries oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, 0, len(h.entries))
	out = append(out, h.entries[h.start:]...)
	out = append(out, h.entries[:h.start]...)
	return out
}

// Len returns the number of entries held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// #endregion

// #region stats

// statsTracker keeps O(1) incremental means.
type statsTracker struct {
	mu    sync.Mutex
	stats PerformanceStats
}

func (s *statsTracker) success(confidence, durationMs float64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.TotalAnalyses++
	n := float64(s.stats.TotalAnalyses)
	s.stats.AverageConfidence += (confidence - s.stats.AverageConfidence) / n
	s.stats.AverageProcessingMs += (durationMs - s.stats.AverageProcessingMs) / n
	s.stats.LastAnalysisAt = at
}

func (s *statsTracker) failure() {
	s.mu.Lock()
	s.stats.Failures++
	s.mu.Unlock()
}

func (s *statsTracker) snapshot() PerformanceStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// #endregion
