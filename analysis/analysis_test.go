package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/config"
	"github.com/uyouii/capacity-model/logistic"
	"github.com/uyouii/capacity-model/model"
)

func newSet(t *testing.T, xs []int, ys []float64) *model.SampleSet {
	t.Helper()
	require.Len(t, ys, len(xs))
	points := make([]model.SamplePoint, len(xs))
	for i := range xs {
		points[i] = model.SamplePoint{Concurrency: xs[i], Throughput: ys[i]}
	}
	set, err := model.NewSampleSet(points)
	require.NoError(t, err)
	return set
}

func concreteSet(t *testing.T) *model.SampleSet {
	return newSet(t, []int{10, 20, 30, 40, 50}, []float64{50, 95, 140, 155, 158})
}

func TestAnalyzeConcreteScenario(t *testing.T) {
	res := Analyze(context.Background(), concreteSet(t), nil)

	require.NoError(t, res.FitError)
	assert.True(t, res.Fit.Converged)
	assert.InDelta(t, 161.967, res.Fit.L, 0.01)
	require.Len(t, res.Breakpoints, 2)
	require.Len(t, res.BreakpointErrors, 2)

	midpoint, ok := res.Breakpoint(model.LogisticMidpoint)
	require.True(t, ok)
	assert.True(t, midpoint.Valid)
	assert.Equal(t, res.Fit.X0, midpoint.Value)
	assert.InDelta(t, res.Fit.L/2, logistic.Evaluate(res.Fit, midpoint.Value), 1e-9)

	knot, ok := res.Breakpoint(model.PiecewiseLinearKnot)
	require.True(t, ok)
	assert.True(t, knot.Valid)
	assert.InDelta(t, 32.86, knot.Value, 0.05)
	assert.NoError(t, res.BreakpointError(model.PiecewiseLinearKnot))
}

func TestAnalyzeInsufficientData(t *testing.T) {
	res := Analyze(context.Background(), newSet(t, []int{10, 20}, []float64{50, 95}), nil)

	assert.ErrorIs(t, res.FitError, common.ErrorInsufficientData)
	assert.False(t, res.Fit.Converged)
	assert.ErrorIs(t, res.BreakpointError(model.LogisticMidpoint), common.ErrorNonConvergence)
	assert.ErrorIs(t, res.BreakpointError(model.PiecewiseLinearKnot), common.ErrorInsufficientData)
	for _, bp := range res.Breakpoints {
		assert.False(t, bp.Valid)
	}
}

func TestAnalyzeThreePoints(t *testing.T) {
	// enough for the fit, not for the knot
	res := Analyze(context.Background(), newSet(t, []int{10, 20, 30}, []float64{100, 180, 200}), nil)

	require.NoError(t, res.FitError)
	assert.NoError(t, res.BreakpointError(model.LogisticMidpoint))
	assert.ErrorIs(t, res.BreakpointError(model.PiecewiseLinearKnot), common.ErrorInsufficientData)
}

func TestAnalyzerMethods(t *testing.T) {
	cfg, err := config.Parse([]byte("breakpoint:\n  methods: [piecewise_linear_knot]\n"))
	require.NoError(t, err)

	res := NewAnalyzer(cfg).Analyze(context.Background(), concreteSet(t))
	require.Len(t, res.Breakpoints, 1)
	assert.Equal(t, model.PiecewiseLinearKnot, res.Breakpoints[0].Method)

	_, ok := res.Breakpoint(model.LogisticMidpoint)
	assert.False(t, ok)
}

func TestAnalyzeIdempotent(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	set := concreteSet(t)

	first := analyzer.Analyze(context.Background(), set)
	again := analyzer.Analyze(context.Background(), set)
	assert.Equal(t, first, again)
}
