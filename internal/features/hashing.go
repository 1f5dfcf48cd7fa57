package features

import (
	"context"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/haqei/situation-engine/internal/situation"
)

// #region hashing

// HashingVectorizer projects word tokens and character bigrams into a
// signed hash space. It needs no model and is deterministic.
type HashingVectorizer struct {
	dim int
}

// NewHashingVectorizer creates a vectorizer of dim components. dim < 1
// selects the default.
func NewHashingVectorizer(dim int) *HashingVectorizer {
	if dim < 1 {
		dim = DefaultExtractorConfig().Dim
	}
	return &HashingVectorizer{dim: dim}
}

// Name identifies the vectorizer in results.
func (h *HashingVectorizer) Name() string { return "hashing" }

// Dim returns the vector length.
func (h *HashingVectorizer) Dim() int { return h.dim }

// Vectorize returns an L2-normalized vector. Empty text yields all zeros.
func (h *HashingVectorizer) Vectorize(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, h.dim)
	normalized := situation.Normalize(text)

	for _, tok := range strings.Fields(normalized) {
		h.add(vec, "w:"+tok)
	}
	runes := []rune(strings.ReplaceAll(normalized, " ", ""))
	for i := 0; i+1 < len(runes); i++ {
		h.add(vec, "b:"+string(runes[i:i+2]))
	}

	out := make([]float32, h.dim)
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return out, nil
	}
	n := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(v / n)
	}
	return out, nil
}

// add hashes key into a bucket; the top bit picks the sign.
func (h *HashingVectorizer) add(vec []float64, key string) {
	sum := xxhash.Sum64String(key)
	idx := sum % uint64(h.dim)
	if sum>>63 == 1 {
		vec[idx]--
	} else {
		vec[idx]++
	}
}

// #endregion hashing
