package stats

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, 3, 2})

	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Median, 1e-9)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, 1.6666666667, s.Variance, 1e-9)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.StdDev, 1e-9)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 1.0, s.Min)
	assert.True(t, s.VarianceDefined())
}

func TestSummarizeSingleValue(t *testing.T) {
	s := Summarize([]float64{7})

	assert.Equal(t, 7.0, s.Median)
	assert.Equal(t, 7.0, s.Mean)
	assert.Equal(t, 7.0, s.Max)
	assert.Equal(t, 7.0, s.Min)
	assert.True(t, math.IsNaN(s.Variance), "variance of one value must be NaN, got %v", s.Variance)
	assert.True(t, math.IsNaN(s.StdDev))
	assert.False(t, s.VarianceDefined())
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.Count)
	for name, v := range map[string]float64{
		"median": s.Median, "mean": s.Mean, "variance": s.Variance,
		"std": s.StdDev, "max": s.Max, "min": s.Min,
	} {
		assert.True(t, math.IsNaN(v), "%s should be NaN", name)
	}
}

func TestMedianOdd(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 3, 1}))
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		q        float64
		expected float64
	}{
		{0, 1},
		{1, 10},
		{0.5, 5.5},
		{0.05, 1.45},
		{0.9, 9.1},
		{0.25, 3.25},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, Quantile(values, tt.q), 1e-9, "q=%v", tt.q)
	}

	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.True(t, math.IsNaN(Quantile(values, 1.5)))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, values, "input must not be reordered")
}

func TestValuesByKey(t *testing.T) {
	got := ValuesByKey(map[string]int{"b": 2, "a": 1, "c": 3})
	assert.Equal(t, []float64{1, 2, 3}, got)
}

func TestSummaryMarshalJSONUsesNullForUndefined(t *testing.T) {
	raw, err := json.Marshal(Summarize([]float64{3}))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["variance"])
	assert.Nil(t, decoded["std_dev"])
	assert.Equal(t, 3.0, decoded["mean"])
	assert.Equal(t, 1.0, decoded["count"])
}
