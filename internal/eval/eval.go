package eval

import (
	"fmt"

	"github.com/haqei/situation-engine/internal/catalog"
)

// #region eval-harness
// EvalHarness scores a batch of observations against the calibration
// thresholds.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run computes distribution, coverage and calibration metrics. Label-based
// metrics are skipped when no observation carries an expected archetype.
func (h *EvalHarness) Run(obs []Observation) EvalResult {
	cfg := h.config
	var metrics []EvalMetric
	var failReasons []string
	add := func(m EvalMetric) {
		metrics = append(metrics, m)
		if !m.Pass {
			failReasons = append(failReasons, fmt.Sprintf("%s %.4f vs %.4f", m.Name, m.Value, m.Threshold))
		}
	}

	if len(obs) == 0 {
		return EvalResult{Passed: false, Reason: "eval failed: no observations"}
	}

	// 1. Archetype balance
	counts := ArchetypeCounts(obs)
	_, p := ChiSquareUniform(counts)
	add(EvalMetric{Name: "archetype_chi_square_p", Value: p, Threshold: cfg.MinChiSquareP, Pass: p >= cfg.MinChiSquareP})
	for i, a := range catalog.Archetypes {
		share := float64(counts[i]) / float64(len(obs))
		add(EvalMetric{
			Name:      "archetype_share_" + string(a),
			Value:     share,
			Threshold: cfg.MinArchetypeShare,
			Pass:      share >= cfg.MinArchetypeShare && share <= cfg.MaxArchetypeShare,
			Detail:    fmt.Sprintf("band [%.2f, %.2f]", cfg.MinArchetypeShare, cfg.MaxArchetypeShare),
		})
	}

	// 2. Catalog coverage and concentration
	primary := PrimaryCounts(obs)
	covered := Coverage(obs)
	coverage := float64(covered) / float64(catalog.Size)
	add(EvalMetric{
		Name:      "catalog_coverage",
		Value:     coverage,
		Threshold: 1,
		Pass:      !cfg.RequireFullCoverage || covered == catalog.Size,
		Detail:    fmt.Sprintf("%d of %d records", covered, catalog.Size),
	})
	top := TopShare(primary, 10)
	add(EvalMetric{Name: "top10_share", Value: top, Threshold: cfg.MaxTopTenShare, Pass: top <= cfg.MaxTopTenShare})
	gini := Gini(primary)
	add(EvalMetric{Name: "selection_gini", Value: gini, Threshold: cfg.MaxGini, Pass: gini < cfg.MaxGini})

	// 3. Confidence calibration
	var conf, correct []float64
	var high, highCorrect int
	for _, o := range obs {
		if o.Expected == "" {
			continue
		}
		hit := 0.0
		if o.Expected == o.Predicted {
			hit = 1
		}
		conf = append(conf, o.Confidence)
		correct = append(correct, hit)
		if o.Confidence > cfg.HighConfidence {
			high++
			highCorrect += int(hit)
		}
	}
	if len(conf) > 0 {
		r := Pearson(conf, correct)
		add(EvalMetric{Name: "confidence_pearson", Value: r, Threshold: cfg.MinPearson, Pass: r > cfg.MinPearson})
		acc := safeDiv(float64(highCorrect), float64(high))
		add(EvalMetric{
			Name:      "high_confidence_accuracy",
			Value:     acc,
			Threshold: cfg.MinHighConfAccuracy,
			Pass:      high == 0 || acc > cfg.MinHighConfAccuracy,
			Detail:    fmt.Sprintf("%d labeled cases above %.2f", high, cfg.HighConfidence),
		})
	}

	reason := "all checks passed"
	if len(failReasons) == 1 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
	} else if len(failReasons) > 1 {
		reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
	}
	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region counting
// ArchetypeCounts counts predicted archetypes in declaration order.
func ArchetypeCounts(obs []Observation) []int {
	idx := make(map[catalog.Archetype]int, len(catalog.Archetypes))
	for i, a := range catalog.Archetypes {
		idx[a] = i
	}
	counts := make([]int, len(catalog.Archetypes))
	for _, o := range obs {
		if i, ok := idx[o.Predicted]; ok {
			counts[i]++
		}
	}
	return counts
}

// PrimaryCounts returns how often each record id 1..64 was the primary pick.
func PrimaryCounts(obs []Observation) []int {
	counts := make([]int, catalog.Size)
	for _, o := range obs {
		if o.PrimaryID >= 1 && o.PrimaryID <= catalog.Size {
			counts[o.PrimaryID-1]++
		}
	}
	return counts
}

// Coverage counts distinct records selected as primary or alternate.
func Coverage(obs []Observation) int {
	seen := make(map[int]bool, catalog.Size)
	for _, o := range obs {
		seen[o.PrimaryID] = true
		for _, id := range o.Alternatives {
			seen[id] = true
		}
	}
	n := 0
	for id := range seen {
		if id >= 1 && id <= catalog.Size {
			n++
		}
	}
	return n
}

// #endregion counting
