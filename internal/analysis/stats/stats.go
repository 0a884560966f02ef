// Package stats computes the summary statistics shared by every report view.
package stats

import (
	"cmp"
	"encoding/json"
	"math"
	"slices"
)

// Summary holds the five figures reported for a numeric sequence plus the
// standard deviation. Any figure that is undefined for the sample size is NaN.
type Summary struct {
	Count    int
	Median   float64
	Mean     float64
	Variance float64
	StdDev   float64
	Max      float64
	Min      float64
}

// Summarize computes a Summary. Variance uses the n-1 denominator, so it is NaN for n <= 1.
func Summarize(values []float64) Summary {
	n := len(values)
	s := Summary{
		Count:    n,
		Median:   math.NaN(),
		Mean:     math.NaN(),
		Variance: math.NaN(),
		StdDev:   math.NaN(),
		Max:      math.NaN(),
		Min:      math.NaN(),
	}
	if n == 0 {
		return s
	}

	s.Mean = Mean(values)
	s.Median = Median(values)
	s.Min, s.Max = MinMax(values)
	s.Variance = Variance(values)
	s.StdDev = math.Sqrt(s.Variance)
	return s
}

// VarianceDefined reports whether the sample was large enough for a variance.
func (s Summary) VarianceDefined() bool {
	return !math.IsNaN(s.Variance)
}

// Mean returns the arithmetic mean, NaN for an empty sequence.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the sample variance, NaN when fewer than two values are given.
func Variance(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}
	mean := Mean(values)
	var acc float64
	for _, v := range values {
		d := v - mean
		acc += d * d
	}
	return acc / float64(n-1)
}

// StdDev is the square root of Variance.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Median returns the middle value, averaging the two central values for even lengths.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// MinMax returns the extremes, both NaN for an empty sequence.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	return slices.Min(values), slices.Max(values)
}

// Quantile returns the q-th quantile (0 <= q <= 1) using linear interpolation
// between closest ranks. The input is not modified.
func Quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 || q < 0 || q > 1 || math.IsNaN(q) {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// ValuesByKey returns the values of m ordered by ascending key.
func ValuesByKey[K cmp.Ordered, V int | int64 | float64](m map[K]V) []float64 {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]float64, 0, len(keys))
	for _, k := range keys {
		out = append(out, float64(m[k]))
	}
	return out
}

type summaryJSON struct {
	Count    int      `json:"count"`
	Median   *float64 `json:"median"`
	Mean     *float64 `json:"mean"`
	Variance *float64 `json:"variance"`
	StdDev   *float64 `json:"std_dev"`
	Max      *float64 `json:"max"`
	Min      *float64 `json:"min"`
}

// MarshalJSON renders undefined figures as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		Count:    s.Count,
		Median:   Nullable(s.Median),
		Mean:     Nullable(s.Mean),
		Variance: Nullable(s.Variance),
		StdDev:   Nullable(s.StdDev),
		Max:      Nullable(s.Max),
		Min:      Nullable(s.Min),
	})
}

// Nullable maps NaN and infinities to nil so they encode as JSON null.
func Nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
