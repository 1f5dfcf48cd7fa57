package logging

import "time"

// #region analysis-entry
// AnalysisEntry is a single row in the analysis_log table. Input text is
// never stored, only its length in runes.
type AnalysisEntry struct {
	ID            string    `json:"id"`
	OK            bool      `json:"ok"`
	Archetype     string    `json:"archetype,omitempty"`
	PrimaryID     int       `json:"primaryId"`
	Line          int       `json:"line"`
	Confidence    float64   `json:"confidence"`
	FallbackLevel int       `json:"fallbackLevel"`
	InputRunes    int       `json:"inputRunes"`
	DurationMs    float64   `json:"durationMs"`
	Phase         string    `json:"phase,omitempty"` // failing phase, empty on success
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
// #endregion analysis-entry
