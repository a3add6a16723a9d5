package logistic

import (
	"fmt"
	"math"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/model"
	"github.com/uyouii/capacity-model/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Fitter fits L / (1 + exp(-k*(x-x0))) to a sample set by Levenberg-Marquardt
// least squares. A Fitter holds configuration only and may be shared between
// goroutines.
type Fitter struct {
	maxEvaluations    int
	initialGrowthRate float64
	tolerance         float64
}

type Option func(*Fitter)

// WithMaxEvaluations bounds the number of residual evaluations per fit.
func WithMaxEvaluations(n int) Option {
	return func(f *Fitter) {
		if n > 0 {
			f.maxEvaluations = n
		}
	}
}

// WithInitialGrowthRate replaces k0 in the initial guess.
func WithInitialGrowthRate(k float64) Option {
	return func(f *Fitter) {
		if utils.IsFinite(k) && k != 0 {
			f.initialGrowthRate = k
		}
	}
}

func WithTolerance(tol float64) Option {
	return func(f *Fitter) {
		if tol > 0 && utils.IsFinite(tol) {
			f.tolerance = tol
		}
	}
}

func NewFitter(opts ...Option) *Fitter {
	f := &Fitter{
		maxEvaluations:    DefaultMaxEvaluations,
		initialGrowthRate: DefaultInitialGrowthRate,
		tolerance:         DefaultTolerance,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// InitialGuess returns [L0, k0, x0_0]: the highest throughput, the configured
// growth rate and the median concurrency.
func (f *Fitter) InitialGuess(set *model.SampleSet) []float64 {
	return []float64{floats.Max(set.Throughputs()), f.initialGrowthRate, set.MedianConcurrency()}
}

// Fit never panics and always returns a usable FitResult. On failure the
// result has Converged false and err wraps ErrorInsufficientData,
// ErrorDegenerateInput or ErrorNonConvergence.
func (f *Fitter) Fit(set *model.SampleSet) (model.FitResult, error) {
	if set.Len() < MinFitPoints {
		return model.FitResult{}, fmt.Errorf("logistic fit needs at least %d samples, got %d: %w",
			MinFitPoints, set.Len(), common.ErrorInsufficientData)
	}

	xs, ys := set.Concurrencies(), set.Throughputs()
	// a flat series fits equally well for any growth rate
	if floats.Min(ys) == floats.Max(ys) {
		return model.FitResult{}, fmt.Errorf("all %d throughput values equal %v: %w",
			len(ys), ys[0], common.ErrorDegenerateInput)
	}

	params, residual, evaluations, err := f.levenbergMarquardt(xs, ys, f.InitialGuess(set))
	if err != nil {
		return model.FitResult{Evaluations: evaluations}, err
	}
	if !utils.IsFinite(params...) || !utils.IsFinite(residual) {
		return model.FitResult{Evaluations: evaluations}, fmt.Errorf("fitted parameters %v are not finite: %w",
			params, common.ErrorNonConvergence)
	}

	return model.FitResult{
		L:           params[0],
		K:           params[1],
		X0:          params[2],
		Converged:   true,
		Residual:    residual,
		Evaluations: evaluations,
	}, nil
}

// levenbergMarquardt minimizes the residual sum of squares starting at init.
// Each iteration solves (JᵀJ + λ·D) δ = Jᵀr with D the diagonal of JᵀJ. λ
// shrinks after an accepted step and grows after a rejected one.
//
// It stops successfully when both the actual and the predicted relative
// reduction of the sum of squares fall under the tolerance, when the
// relative step length does, or when the residual is exactly zero.
func (f *Fitter) levenbergMarquardt(xs, ys, init []float64) ([]float64, float64, int, error) {
	n := len(xs)
	params := make([]float64, numParams)
	copy(params, init)
	next := make([]float64, numParams)
	residuals := make([]float64, n)
	trial := make([]float64, n)

	cost := sumSquares(xs, ys, params, residuals)
	evaluations := 1
	if !utils.IsFinite(cost) {
		return nil, 0, evaluations, fmt.Errorf("residual at initial guess %v is not finite: %w",
			init, common.ErrorNonConvergence)
	}

	jac := mat.NewDense(n, numParams, nil)
	damped := mat.NewSymDense(numParams, nil)
	grad := mat.NewVecDense(numParams, nil)
	var (
		jtj  mat.SymDense
		step mat.VecDense
		chol mat.Cholesky
	)
	lambda := initialDamping

	for evaluations < f.maxEvaluations {
		if cost == 0 {
			return params, cost, evaluations, nil
		}

		jacobian(jac, xs, params)
		jtj.SymOuterK(1, jac.T())
		grad.MulVec(jac.T(), mat.NewVecDense(n, residuals))

		for evaluations < f.maxEvaluations {
			for i := 0; i < numParams; i++ {
				for j := i; j < numParams; j++ {
					v := jtj.At(i, j)
					if i == j {
						v += lambda * marquardtScale(v)
					}
					damped.SetSym(i, j, v)
				}
			}

			// an ill-conditioned solve counts as singular, even with a finite condition
			if !chol.Factorize(damped) || chol.SolveVecTo(&step, grad) != nil {
				lambda *= dampingUp
				if lambda > maxDamping {
					return nil, 0, evaluations, fmt.Errorf("damped normal equations stayed singular: %w",
						common.ErrorNonConvergence)
				}
				continue
			}

			for i := range next {
				next[i] = params[i] + step.AtVec(i)
			}
			nextCost := sumSquares(xs, ys, next, trial)
			evaluations++
			relStep := mat.Norm(&step, 2) / (floats.Norm(params, 2) + f.tolerance)

			if utils.IsFinite(nextCost) && nextCost < cost {
				predicted := cost - linearizedSumSquares(jac, &step, residuals)
				actual := cost - nextCost
				prev := cost

				copy(params, next)
				copy(residuals, trial)
				cost = nextCost
				lambda = math.Max(lambda/dampingDown, minDamping)

				if actual <= f.tolerance*prev && predicted <= f.tolerance*prev {
					return params, cost, evaluations, nil
				}
				if relStep <= f.tolerance {
					return params, cost, evaluations, nil
				}
				break
			}

			// even a vanishing step does not improve on the current point
			if relStep <= f.tolerance {
				return params, cost, evaluations, nil
			}
			lambda *= dampingUp
			if lambda > maxDamping {
				return nil, 0, evaluations, fmt.Errorf("no descent step found at %v: %w",
					params, common.ErrorNonConvergence)
			}
		}
	}

	return nil, 0, evaluations, fmt.Errorf("evaluation budget of %d exhausted: %w",
		f.maxEvaluations, common.ErrorNonConvergence)
}

// marquardtScale keeps the damping of a parameter with a zero Jacobian column.
func marquardtScale(diag float64) float64 {
	if diag > 0 {
		return diag
	}
	return 1
}

// linearizedSumSquares returns ||r - J·step||², the sum of squares the linear
// model predicts after taking step.
func linearizedSumSquares(jac *mat.Dense, step *mat.VecDense, residuals []float64) float64 {
	res := 0.0
	for i := range residuals {
		v := residuals[i] - mat.Dot(jac.RowView(i), step)
		res += v * v
	}
	return res
}
