package breakpoint

import (
	"fmt"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/model"
)

// Strategy derives one breakpoint from a sample set and the logistic fit of
// that set. Implementations are stateless and safe for concurrent use.
type Strategy interface {
	Method() model.Method
	Detect(set *model.SampleSet, fit model.FitResult) (model.BreakpointResult, error)
}

// Detector dispatches to the strategy registered for a method.
type Detector struct {
	strategies map[model.Method]Strategy
}

type Option func(*Detector)

// WithStrategy registers s, replacing any strategy with the same method.
func WithStrategy(s Strategy) Option {
	return func(d *Detector) {
		if s != nil {
			d.strategies[s.Method()] = s
		}
	}
}

// WithKnotEvaluations sets the evaluation budget of the piecewise linear knot search.
func WithKnotEvaluations(n int) Option {
	return WithStrategy(NewKnot(n))
}

// NewDetector registers the logistic midpoint and the piecewise linear knot
// strategies before applying opts.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{strategies: map[model.Method]Strategy{}}
	for _, s := range []Strategy{NewMidpoint(), NewKnot(DefaultKnotEvaluations)} {
		d.strategies[s.Method()] = s
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs the strategy of method. The returned result always carries
// method, even when err is not nil.
func (d *Detector) Detect(method model.Method, set *model.SampleSet,
	fit model.FitResult) (model.BreakpointResult, error) {
	s, ok := d.strategies[method]
	if !ok {
		return model.BreakpointResult{Method: method},
			fmt.Errorf("no strategy for breakpoint method %v: %w", method, common.ErrorInvalidValue)
	}
	return s.Detect(set, fit)
}

// DetectAll runs every method in order. The two returned slices are parallel
// to methods; a failed method leaves an invalid result and its error.
func (d *Detector) DetectAll(methods []model.Method, set *model.SampleSet,
	fit model.FitResult) ([]model.BreakpointResult, []error) {
	results := make([]model.BreakpointResult, 0, len(methods))
	errs := make([]error, 0, len(methods))
	for _, method := range methods {
		res, err := d.Detect(method, set, fit)
		results = append(results, res)
		errs = append(errs, err)
	}
	return results, errs
}
