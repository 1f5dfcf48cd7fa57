package eval

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// #region distribution

// ChiSquareUniform tests observed counts against a uniform distribution and
// returns the statistic and its p-value with len(counts)-1 degrees of freedom.
func ChiSquareUniform(counts []int) (chi, p float64) {
	k := len(counts)
	total := 0
	for _, c := range counts {
		total += c
	}
	if k < 2 || total == 0 {
		return 0, 1
	}
	expected := float64(total) / float64(k)
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	return chi, distuv.ChiSquared{K: float64(k - 1)}.Survival(chi)
}

// Gini returns the Gini coefficient of values; 0 is perfectly even.
func Gini(values []int) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	var sum, weighted float64
	for i, v := range sorted {
		sum += float64(v)
		weighted += float64(2*(i+1)-n-1) * float64(v)
	}
	if sum == 0 {
		return 0
	}
	return weighted / (float64(n) * sum)
}

// TopShare returns the fraction of the total held by the n largest counts.
func TopShare(values []int, n int) float64 {
	sorted := append([]int(nil), values...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	var top, total float64
	for i, v := range sorted {
		if i < n {
			top += float64(v)
		}
		total += float64(v)
	}
	return safeDiv(top, total)
}

// #endregion distribution

// #region correlation

// Pearson returns the correlation coefficient of xs and ys, or 0 when either
// series is constant or the lengths differ.
func Pearson(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) || constant(xs) || constant(ys) {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// #endregion correlation
