package ranker

import "github.com/haqei/situation-engine/internal/catalog"

// #region match
// MatchDetails breaks a record's total score into its terms.
type MatchDetails struct {
	Archetype          float64 `json:"archetype"`
	Temporal           float64 `json:"temporal"`
	Dynamics           float64 `json:"dynamics"`
	DynamicsSimilarity float64 `json:"dynamicsSimilarity"`
	Transformation     float64 `json:"transformation"`
	Adjustment         float64 `json:"adjustment"`
	Rarity             float64 `json:"rarity"`
}

// Candidate is one scored catalog record.
type Candidate struct {
	Record  catalog.Record `json:"record"`
	Score   float64        `json:"score"`
	Details MatchDetails   `json:"matchDetails"`
}

// #endregion match

// #region line
// LinePosition is the chosen sub-position within the primary record.
type LinePosition struct {
	Index   int     `json:"index"`
	Name    string  `json:"name"`
	Meaning string  `json:"meaning"`
	Weight  float64 `json:"weight"`
	Score   float64 `json:"score"`
}

// #endregion line

// #region interpretation
// TimingKind is the recommended stance toward acting now.
type TimingKind string

const (
	TimingImmediate TimingKind = "immediate"
	TimingWait      TimingKind = "wait"
	TimingLead      TimingKind = "lead"
	TimingSteady    TimingKind = "steady"
)

// Timing pairs a timing kind with its advice text.
type Timing struct {
	Kind   TimingKind `json:"kind"`
	Advice string     `json:"advice"`
}

// Interpretation is the templated, deterministic reading of a result.
type Interpretation struct {
	SituationText string   `json:"situationText"`
	Guidance      []string `json:"guidance"`
	Warnings      []string `json:"warnings"`
	Opportunities []string `json:"opportunities"`
	Timing        Timing   `json:"timing"`
}

// #endregion interpretation

// #region result
// FallbackInfo reports the catalog level a result was computed at.
type FallbackInfo struct {
	IsActive      bool    `json:"isActive"`
	Level         int     `json:"level"`
	QualityLevel  float64 `json:"qualityLevel"`
	QualityImpact string  `json:"qualityImpact"`
}

// Metadata carries bookkeeping about how a result was produced.
type Metadata struct {
	QualityLevel float64 `json:"qualityLevel"`
	Candidates   int     `json:"candidates"`
	Skipped      int     `json:"skipped"`
	Synthesized  bool    `json:"synthesized"`
	Locale       string  `json:"locale"`
}

// MappingResult is the ranker's answer for one signal. It is not mutated
// after it is returned.
type MappingResult struct {
	Primary        Candidate      `json:"primary"`
	Alternatives   []Candidate    `json:"alternatives"`
	Line           LinePosition   `json:"linePosition"`
	Interpretation Interpretation `json:"interpretation"`
	Confidence     float64        `json:"confidence"`
	Fallback       FallbackInfo   `json:"fallbackInfo"`
	Metadata       Metadata       `json:"metadata"`
}

// #endregion result
