package breakpoint

import (
	"errors"
	"fmt"
	"math"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/model"
	"github.com/uyouii/capacity-model/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Knot fits the continuous two segment line
//
//	y = a + s1*x + s2*max(0, x-b)
//
// and reports the knot b. It does not use the logistic fit.
//
// For a fixed b the model is linear in a, s1 and s2 and is solved exactly by
// QR least squares, so only b is searched. The search runs Nelder-Mead on an
// unbounded coordinate u with b = lo + (hi-lo)/(1+exp(-u)), where lo and hi
// are the second lowest and second highest concurrency.
type Knot struct {
	maxEvaluations int
}

// NewKnot returns a knot strategy spending at most maxEvaluations objective
// evaluations per search start. A non positive value selects DefaultKnotEvaluations.
func NewKnot(maxEvaluations int) *Knot {
	if maxEvaluations <= 0 {
		maxEvaluations = DefaultKnotEvaluations
	}
	return &Knot{maxEvaluations: maxEvaluations}
}

func (*Knot) Method() model.Method {
	return model.PiecewiseLinearKnot
}

func (k *Knot) Detect(set *model.SampleSet, _ model.FitResult) (model.BreakpointResult, error) {
	res := model.BreakpointResult{Method: model.PiecewiseLinearKnot}
	n := set.Len()
	if n < MinKnotPoints {
		return res, fmt.Errorf("knot search needs at least %d samples, got %d: %w",
			MinKnotPoints, n, common.ErrorInsufficientData)
	}

	xs, ys := set.Concurrencies(), set.Throughputs()
	if floats.Min(ys) == floats.Max(ys) {
		return res, fmt.Errorf("all %d throughput values equal %v: %w", n, ys[0], common.ErrorDegenerateInput)
	}

	lo, hi := xs[1], xs[n-2]
	h := newHinge(xs, ys)

	knot, best := math.NaN(), math.Inf(1)
	for _, seed := range knotSeeds(xs, set.MedianConcurrency()) {
		b, sse, err := k.search(h, lo, hi, seed)
		if err != nil {
			continue
		}
		if sse < best {
			knot, best = b, sse
		}
	}
	// the search coordinate never reaches the bounds themselves
	for _, b := range []float64{lo, hi} {
		if sse := h.sumSquares(b); sse < best {
			knot, best = b, sse
		}
	}
	if math.IsNaN(knot) {
		return res, fmt.Errorf("knot search found no finite residual: %w", common.ErrorNonConvergence)
	}

	knot = math.Min(math.Max(knot, lo), hi)
	sse, err := h.solve(knot)
	if err != nil {
		return res, err
	}

	res.Value = knot
	res.Knot = &model.PiecewiseFit{
		Knot:      knot,
		Intercept: h.coef.AtVec(0),
		Slope1:    h.coef.AtVec(1),
		Slope2:    h.coef.AtVec(1) + h.coef.AtVec(2),
		Residual:  sse,
	}
	if !set.Contains(knot) {
		return res, fmt.Errorf("knot %v outside %s: %w", knot, set.DebugString(), common.ErrorOutOfDomain)
	}
	res.Valid = true
	return res, nil
}

func (k *Knot) search(h *hinge, lo, hi, seed float64) (float64, float64, error) {
	problem := optimize.Problem{
		Func: func(u []float64) float64 {
			return h.sumSquares(toKnot(u[0], lo, hi))
		},
	}
	settings := &optimize.Settings{FuncEvaluations: k.maxEvaluations}
	result, err := optimize.Minimize(problem, []float64{toSearch(seed, lo, hi)}, settings,
		&optimize.NelderMead{SimplexSize: knotSimplexSize})
	if err != nil {
		return 0, 0, err
	}
	return toKnot(result.X[0], lo, hi), result.F, nil
}

// knotSeeds returns the median followed by every concurrency strictly inside
// the search bounds, without repeats.
func knotSeeds(xs []float64, median float64) []float64 {
	seeds := []float64{median}
	for _, x := range xs[2 : len(xs)-2] {
		if x != median {
			seeds = append(seeds, x)
		}
	}
	return seeds
}

func toKnot(u, lo, hi float64) float64 {
	return lo + (hi-lo)/(1+math.Exp(-u))
}

func toSearch(b, lo, hi float64) float64 {
	frac := (b - lo) / (hi - lo)
	return math.Log(frac / (1 - frac))
}

// hinge holds the least squares problem of the two segment model. It is
// scratch space for one Detect call.
type hinge struct {
	xs     []float64
	ys     *mat.VecDense
	design *mat.Dense
	qr     mat.QR
	coef   mat.VecDense
	fitted mat.VecDense
	// sum of squares around the mean, never beaten by a worse fit
	total float64
}

func newHinge(xs, ys []float64) *hinge {
	n := len(xs)
	design := mat.NewDense(n, hingeParams, nil)
	for i, x := range xs {
		design.Set(i, 0, 1)
		design.Set(i, 1, x)
	}

	mean := stat.Mean(ys, nil)
	total := 0.0
	for _, y := range ys {
		total += (y - mean) * (y - mean)
	}

	return &hinge{
		xs:     xs,
		ys:     mat.NewVecDense(n, ys),
		design: design,
		total:  total,
	}
}

// solve fits a, s1 and s2 for knot b into h.coef and returns the residual
// sum of squares.
func (h *hinge) solve(b float64) (float64, error) {
	for i, x := range h.xs {
		h.design.Set(i, 2, math.Max(0, x-b))
	}

	h.qr.Factorize(h.design)
	if err := h.qr.SolveVecTo(&h.coef, false, h.ys); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return 0, fmt.Errorf("segments at knot %v are singular: %v: %w", b, err, common.ErrorNonConvergence)
		}
	}

	h.fitted.MulVec(h.design, &h.coef)
	sse := 0.0
	for i := range h.xs {
		r := h.ys.AtVec(i) - h.fitted.AtVec(i)
		sse += r * r
	}
	if utils.IsFinite(sse) {
		return sse, nil
	}
	return 0, fmt.Errorf("residual at knot %v is not finite: %w", b, common.ErrorNonConvergence)
}

func (h *hinge) sumSquares(b float64) float64 {
	sse, err := h.solve(b)
	if err != nil {
		return h.total
	}
	return sse
}
