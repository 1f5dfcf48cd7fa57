package ranker

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// #region levels

// Levels are the permitted catalog sizes, largest first.
var Levels = [...]int{64, 32, 16, 8}

// ErrInvalidLevel is returned when a level outside Levels is requested.
var ErrInvalidLevel = errors.New("invalid fallback level")

// ValidLevel reports whether level is one of Levels.
func ValidLevel(level int) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// QualityLevel estimates result quality at a level: 1.0 at 64, then 0.15
// lower per halving (0.85, 0.70, 0.55).
func QualityLevel(level int) float64 {
	if level >= Levels[0] {
		return 1
	}
	if level < 1 {
		return 0
	}
	halvings := math.Log2(float64(Levels[0]) / float64(level))
	return math.Max(0, 1-0.15*halvings)
}

// effectiveLevel is the largest permitted level not above requested that
// the available records can still fill.
func effectiveLevel(requested, available int) int {
	for _, l := range Levels {
		if l <= requested && l <= available {
			return l
		}
	}
	return Levels[len(Levels)-1]
}

// #endregion levels

// #region controller

// DegradationState is a point-in-time copy of the controller.
type DegradationState struct {
	Level  int    `json:"level"`
	Active bool   `json:"isActive"`
	Reason string `json:"reason,omitempty"`
}

// Degradation controls how much of the catalog the ranker may use. It is
// passed to each ranker explicitly and safe for concurrent use.
type Degradation struct {
	mu    sync.RWMutex
	state DegradationState
}

// NewDegradation starts at full quality.
func NewDegradation() *Degradation {
	return &Degradation{state: DegradationState{Level: Levels[0]}}
}

// SetLevel restricts the catalog to level records.
func (d *Degradation) SetLevel(level int) error {
	if !ValidLevel(level) {
		return fmt.Errorf("%w: %d (want one of %v)", ErrInvalidLevel, level, Levels)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = DegradationState{Level: level, Active: level < Levels[0]}
	if d.state.Active {
		d.state.Reason = "manual"
	}
	return nil
}

// SimulateFailure models the reference data source going away.
func (d *Degradation) SimulateFailure() {
	d.mu.Lock()
	d.state = DegradationState{Level: Levels[len(Levels)-1], Active: true, Reason: "catalog-unavailable"}
	d.mu.Unlock()
}

// SimulateRecovery restores the full catalog and clears the active flag.
func (d *Degradation) SimulateRecovery() {
	d.mu.Lock()
	d.state = DegradationState{Level: Levels[0]}
	d.mu.Unlock()
}

// State returns the current state.
func (d *Degradation) State() DegradationState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// #endregion controller
