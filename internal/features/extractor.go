package features

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/haqei/situation-engine/internal/situation"
)

// #region extractor

// Extractor computes auxiliary features for analysis inputs.
type Extractor struct {
	vectorizer Vectorizer
	config     ExtractorConfig
}

// NewExtractor creates an Extractor. vectorizer may be nil, in which case a
// local hashing vectorizer of config.Dim is used.
func NewExtractor(vectorizer Vectorizer, config ExtractorConfig) *Extractor {
	if vectorizer == nil {
		vectorizer = NewHashingVectorizer(config.Dim)
	}
	return &Extractor{vectorizer: vectorizer, config: config}
}

// Source names the vectorizer in use.
func (e *Extractor) Source() string { return e.vectorizer.Name() }

// #endregion extractor

// #region extract

// Extract computes lexical statistics and the feature vector for text. On
// vectorizer failure the lexical statistics are still returned along with
// the error.
func (e *Extractor) Extract(ctx context.Context, text string) (Features, error) {
	tokens := strings.Fields(situation.Normalize(text))
	f := Features{
		Source:    e.vectorizer.Name(),
		Tokens:    len(tokens),
		Diversity: diversity(tokens),
	}

	vec, err := e.vectorizer.Vectorize(ctx, text)
	if err != nil {
		return f, fmt.Errorf("vectorize with %s: %w", f.Source, err)
	}
	f.Vector = vec
	f.Dim = len(vec)
	var sum float64
	for _, v := range vec {
		if v != 0 {
			f.Active++
		}
		sum += float64(v) * float64(v)
	}
	f.Norm = math.Sqrt(sum)
	return f, nil
}

// #endregion extract

// #region helpers

// diversity is the share of unique tokens.
func diversity(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}
	return float64(len(unique)) / float64(len(tokens))
}

// cosine computes cosine similarity between two vectors.
// Returns 0 for zero-length or mismatched vectors.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// #endregion helpers
