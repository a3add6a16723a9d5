package model

import (
	"fmt"
	"strings"

	"github.com/uyouii/capacity-model/common"
)

// Method names a breakpoint strategy.
type Method int

const (
	LogisticMidpoint    Method = 1
	PiecewiseLinearKnot Method = 2
)

var methodNames = map[Method]string{
	LogisticMidpoint:    "logistic_midpoint",
	PiecewiseLinearKnot: "piecewise_linear_knot",
}

func AllMethods() []Method {
	return []Method{LogisticMidpoint, PiecewiseLinearKnot}
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

func ParseMethod(name string) (Method, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for method, methodName := range methodNames {
		if methodName == name {
			return method, nil
		}
	}
	return 0, fmt.Errorf("unknown breakpoint method %q: %w", name, common.ErrorInvalidValue)
}

func (m Method) MarshalText() ([]byte, error) {
	if _, ok := methodNames[m]; !ok {
		return nil, fmt.Errorf("unknown breakpoint method %d: %w", int(m), common.ErrorInvalidValue)
	}
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	method, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = method
	return nil
}

// FitResult holds the logistic parameters L, K and X0 of
// f(x) = L / (1 + exp(-K*(x-X0))) and the residual sum of squares.
// When Converged is false the other fields except Evaluations are zero and
// must not be read.
type FitResult struct {
	L           float64 `json:"l" yaml:"l"`
	K           float64 `json:"k" yaml:"k"`
	X0          float64 `json:"x0" yaml:"x0"`
	Converged   bool    `json:"converged" yaml:"converged"`
	Residual    float64 `json:"residual" yaml:"residual"`
	Evaluations int     `json:"evaluations" yaml:"evaluations"`
}

// Declining reports a converged fit with a negative growth rate: throughput
// falls as concurrency grows. It is a valid fit that callers should show
// differently from a saturating one.
func (f FitResult) Declining() bool {
	return f.Converged && f.K < 0
}

// PiecewiseFit is a continuous two segment line joined at Knot. Slope1 and
// Intercept describe the segment left of the knot, Slope2 the one right of it.
type PiecewiseFit struct {
	Knot      float64 `json:"knot" yaml:"knot"`
	Intercept float64 `json:"intercept" yaml:"intercept"`
	Slope1    float64 `json:"slope1" yaml:"slope1"`
	Slope2    float64 `json:"slope2" yaml:"slope2"`
	Residual  float64 `json:"residual" yaml:"residual"`
}

func (p PiecewiseFit) Evaluate(x float64) float64 {
	y := p.Intercept + p.Slope1*x
	if x > p.Knot {
		y += (p.Slope2 - p.Slope1) * (x - p.Knot)
	}
	return y
}

type BreakpointResult struct {
	Value  float64       `json:"value" yaml:"value"`
	Method Method        `json:"method" yaml:"method"`
	Valid  bool          `json:"valid" yaml:"valid"`
	Knot   *PiecewiseFit `json:"knot,omitempty" yaml:"knot,omitempty"`
}

type CurvePoint struct {
	X     float64 `json:"x" yaml:"x"`
	Value float64 `json:"value" yaml:"value"`
}

// AnalysisResult bundles one fit with the breakpoints computed from it.
// BreakpointErrors is parallel to Breakpoints.
type AnalysisResult struct {
	Fit              FitResult          `json:"fit" yaml:"fit"`
	FitError         error              `json:"-" yaml:"-"`
	Breakpoints      []BreakpointResult `json:"breakpoints" yaml:"breakpoints"`
	BreakpointErrors []error            `json:"-" yaml:"-"`
}

func (r *AnalysisResult) Breakpoint(method Method) (BreakpointResult, bool) {
	for _, res := range r.Breakpoints {
		if res.Method == method {
			return res, true
		}
	}
	return BreakpointResult{}, false
}

func (r *AnalysisResult) BreakpointError(method Method) error {
	for i, res := range r.Breakpoints {
		if res.Method == method && i < len(r.BreakpointErrors) {
			return r.BreakpointErrors[i]
		}
	}
	return nil
}
