package eval

import "github.com/haqei/situation-engine/internal/catalog"

// #region eval-config
// EvalConfig holds the acceptance thresholds for a calibration run.
type EvalConfig struct {
	MinChiSquareP       float64 // archetype balance: reject uniform below this p-value
	MinArchetypeShare   float64 // lower bound of each archetype's primary share
	MaxArchetypeShare   float64 // upper bound of each archetype's primary share
	MaxTopTenShare      float64 // share of primary picks taken by the 10 most selected records
	MaxGini             float64 // Gini coefficient of primary selection frequency
	MinPearson          float64 // confidence vs correctness correlation
	HighConfidence      float64 // confidence above which accuracy is checked
	MinHighConfAccuracy float64
	RequireFullCoverage bool    // every record picked as primary or alternate
}

// DefaultEvalConfig returns the thresholds used by the calibration corpus.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MinChiSquareP:       0.05,
		MinArchetypeShare:   0.20,
		MaxArchetypeShare:   0.30,
		MaxTopTenShare:      0.50,
		MaxGini:             0.70,
		MinPearson:          0.80,
		HighConfidence:      0.80,
		MinHighConfAccuracy: 0.90,
		RequireFullCoverage: true,
	}
}

// #endregion eval-config

// #region observation
// Observation is one analyzed input of a calibration run.
type Observation struct {
	Expected     catalog.Archetype // empty when the case is unlabeled
	Predicted    catalog.Archetype
	Confidence   float64
	PrimaryID    int
	Alternatives []int
}

// #endregion observation

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Pass      bool    `json:"pass"`
	Detail    string  `json:"detail,omitempty"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of a calibration run.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
}

// Metric returns the named metric.
func (r EvalResult) Metric(name string) (EvalMetric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return EvalMetric{}, false
}

// #endregion eval-result
