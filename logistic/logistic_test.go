package logistic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uyouii/capacity-model/model"
)

func TestEvaluateHalfCapacity(t *testing.T) {
	fits := []model.FitResult{
		{L: 161.97, K: 0.1284, X0: 16.667, Converged: true},
		{L: 1000, K: 3, X0: 0.5, Converged: true},
		{L: 300, K: -0.1, X0: 35, Converged: true},
		{L: 1e9, K: 1e-6, X0: 1e5, Converged: true},
	}
	for _, fit := range fits {
		assert.Equal(t, fit.L/2, Evaluate(fit, fit.X0))
	}
}

func TestEvaluateShape(t *testing.T) {
	fit := model.FitResult{L: 200, K: 0.3, X0: 20, Converged: true}

	assert.InDelta(t, 0, Evaluate(fit, -1e6), 1e-9)
	assert.InDelta(t, 200, Evaluate(fit, 1e6), 1e-9)
	assert.Less(t, Evaluate(fit, 10), Evaluate(fit, 30))

	declining := model.FitResult{L: 200, K: -0.3, X0: 20, Converged: true}
	assert.Greater(t, Evaluate(declining, 10), Evaluate(declining, 30))
}

func TestCurve(t *testing.T) {
	fit := model.FitResult{L: 160, K: 0.13, X0: 17, Converged: true}

	points := Curve(fit, 10, 50, 5)
	require.Len(t, points, 5)
	for i, want := range []float64{10, 20, 30, 40, 50} {
		assert.InDelta(t, want, points[i].X, 1e-12)
		assert.Equal(t, Evaluate(fit, points[i].X), points[i].Value)
	}

	assert.Len(t, Curve(fit, 10, 50, 0), DefaultCurvePoints)

	single := Curve(fit, 10, 50, 1)
	require.Len(t, single, 1)
	assert.Equal(t, 10.0, single[0].X)
}

func TestSigmoidSaturation(t *testing.T) {
	assert.Equal(t, 0.0, sigmoid(1, 0, -1000))
	assert.Equal(t, 1.0, sigmoid(1, 0, 1000))
	assert.False(t, math.IsNaN(sigmoid(50, 0, -1e6)))
}
