package features

import "context"

// #region vectorizer-interface

// Vectorizer turns text into a fixed-length feature vector. Implementations
// may be local or remote; callers treat the result as informational only.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// #endregion vectorizer-interface

// #region config

// ExtractorConfig holds tuning knobs for feature extraction.
type ExtractorConfig struct {
	Dim int // vector length for the local hashing vectorizer
}

// DefaultExtractorConfig returns sensible defaults.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{Dim: 64}
}

// #endregion config

// #region features

// Features summarizes the auxiliary vector computed for one input.
type Features struct {
	Source    string    `json:"source"`
	Dim       int       `json:"dim"`
	Norm      float64   `json:"norm"`
	Active    int       `json:"active"`    // non-zero components
	Tokens    int       `json:"tokens"`    // normalized word count
	Diversity float64   `json:"diversity"` // unique tokens / tokens
	Vector    []float32 `json:"-"`
}

// #endregion features
