package logistic

import (
	"math"

	"github.com/uyouii/capacity-model/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Evaluate returns L / (1 + exp(-K*(x-X0))) for the parameters of fit. It
// does not look at fit.Converged; callers decide whether the fit is usable.
func Evaluate(fit model.FitResult, x float64) float64 {
	return curve(fit.L, fit.K, fit.X0, x)
}

// Curve samples the fitted curve at n evenly spaced points in [from, to],
// both ends included.
func Curve(fit model.FitResult, from, to float64, n int) []model.CurvePoint {
	if n <= 0 {
		n = DefaultCurvePoints
	}
	if n == 1 {
		return []model.CurvePoint{{X: from, Value: Evaluate(fit, from)}}
	}

	xs := floats.Span(make([]float64, n), from, to)
	res := make([]model.CurvePoint, 0, n)
	for _, x := range xs {
		res = append(res, model.CurvePoint{X: x, Value: Evaluate(fit, x)})
	}
	return res
}

func curve(l, k, x0, x float64) float64 {
	return l / (1 + math.Exp(-k*(x-x0)))
}

// sigmoid is the fraction of L reached at x. exp overflows to +Inf for very
// negative exponents which drives the result to 0 instead of NaN.
func sigmoid(k, x0, x float64) float64 {
	return 1 / (1 + math.Exp(-k*(x-x0)))
}

// sumSquares fills residuals with y - f(x) and returns their sum of squares.
func sumSquares(xs, ys, params, residuals []float64) float64 {
	l, k, x0 := params[0], params[1], params[2]
	res := 0.0
	for i := range xs {
		r := ys[i] - curve(l, k, x0, xs[i])
		residuals[i] = r
		res += r * r
	}
	return res
}

// jacobian stores the partial derivatives of f with respect to L, K and X0,
// one row per sample.
func jacobian(dst *mat.Dense, xs, params []float64) {
	l, k, x0 := params[0], params[1], params[2]
	for i, x := range xs {
		s := sigmoid(k, x0, x)
		d := l * s * (1 - s)
		dst.Set(i, 0, s)
		dst.Set(i, 1, d*(x-x0))
		dst.Set(i, 2, -d*k)
	}
}
