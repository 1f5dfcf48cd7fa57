package ranker

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/haqei/situation-engine/internal/catalog"
	"github.com/haqei/situation-engine/internal/situation"
	"github.com/haqei/situation-engine/internal/usage"
)

// #region reference-vectors

// referenceDynamics maps each dynamic balance to its canonical
// (drive, resistance, balance) triple.
var referenceDynamics = map[situation.DynamicBalance][3]float64{
	situation.StrongDrive:      {8, 2, 3},
	situation.StrongResistance: {2, 8, 3},
	situation.SeekingBalance:   {5, 5, 8},
	situation.Neutral:          {5, 5, 5},
}

// ErrNoCandidates is returned when every record failed to score.
var ErrNoCandidates = errors.New("no catalog record could be scored")

// #endregion reference-vectors

// #region score-record

// scoreRecord computes one record's total. It fails when the record's
// dynamics vector has no direction or the arithmetic does not stay finite.
func scoreRecord(sig situation.Signal, rec catalog.Record, count int, cfg Config) (Candidate, error) {
	ess := sig.Essence
	var d MatchDetails

	if rec.Archetype == sig.Archetype.Primary {
		d.Archetype = archetypeMatchPoints
	}
	if rec.Temporal == ess.TemporalState {
		d.Temporal = temporalMatchPoints
	}

	ref, ok := referenceDynamics[ess.DynamicBalance]
	if !ok {
		return Candidate{}, fmt.Errorf("score record %d: unknown dynamic balance %q", rec.ID, ess.DynamicBalance)
	}
	vec := [3]float64{rec.Dynamics.Drive, rec.Dynamics.Resistance, rec.Dynamics.Balance}
	sim, err := cosine(vec, ref)
	if err != nil {
		return Candidate{}, fmt.Errorf("score record %d: %w", rec.ID, err)
	}
	d.DynamicsSimilarity = sim
	d.Dynamics = dynamicsPoints * sim

	d.Transformation = transformationPoints * transformationFit(ess, rec)
	d.Adjustment = adjustmentPoints * adjustmentFactor(ess, rec, cfg)
	d.Rarity = cfg.RarityBonus(count)

	total := 0.0
	total += d.Archetype
	total += d.Temporal
	total += d.Dynamics
	total += d.Transformation
	total += d.Adjustment
	total += d.Rarity
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return Candidate{}, fmt.Errorf("score record %d: non-finite total", rec.ID)
	}
	return Candidate{Record: rec, Score: total, Details: d}, nil
}

func cosine(a, b [3]float64) (float64, error) {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, errors.New("zero-length dynamics vector")
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// transformationFit rewards records whose dynamics suit the from/to state.
func transformationFit(ess situation.Essence, rec catalog.Record) float64 {
	fit := 0.0
	if ess.From.Struggling && rec.Dynamics.Resistance > 5 {
		fit += 0.3
	}
	if ess.From.Connected && rec.Dynamics.Balance > 5 {
		fit += 0.2
	}
	if ess.To.Growth && rec.Dynamics.Drive > 6 {
		fit += 0.3
	}
	if ess.To.Transformation && rec.Archetype == catalog.Transformation {
		fit += 0.2
	}
	return fit
}

// adjustmentFactor favors balanced records under high complexity and
// high-movement records under high urgency.
func adjustmentFactor(ess situation.Essence, rec catalog.Record, cfg Config) float64 {
	f := 1.0
	if ess.Complexity > cfg.ComplexityThreshold {
		spread := rec.Yang - rec.Yin
		if spread < 0 {
			spread = -spread
		}
		if spread < cfg.BalancedSpread {
			f = cfg.BalancedBoost
		} else {
			f = cfg.UnbalancedFactor
		}
	}
	if ess.Urgency > cfg.UrgencyThreshold {
		if cfg.isHighMovement(rec.Movement) {
			f *= cfg.HighMovementBoost
		} else {
			f *= cfg.LowMovementFactor
		}
	}
	return f
}

// #endregion score-record

// #region score-all

// scoreAll scores records in order and returns them sorted by descending
// score, ties by catalog order. Records that fail are skipped and their
// errors joined.
func scoreAll(sig situation.Signal, records []catalog.Record, snap usage.Snapshot, cfg Config) ([]Candidate, error) {
	out := make([]Candidate, 0, len(records))
	var errs []error
	for _, rec := range records {
		c, err := scoreRecord(sig, rec, snap.Count(rec.ID), cfg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, errors.Join(errs...)
}

// mappingConfidence blends the primary's score and match quality with the
// situation confidence.
func mappingConfidence(sig situation.Signal, primary Candidate) float64 {
	c := math.Min(primary.Score/100, 0.4)
	if primary.Details.Archetype > 0 {
		c += 0.2
	}
	if primary.Details.Temporal > 0 {
		c += 0.1
	}
	c += primary.Details.DynamicsSimilarity * 0.2
	c += sig.Confidence.Value * 0.1
	return math.Min(1, c)
}

// #endregion score-all
