package analysis

import (
	"fmt"

	"github.com/uyouii/capacity-model/logistic"
	"github.com/uyouii/capacity-model/model"
	"github.com/uyouii/capacity-model/utils"
)

// decimals kept in plotted curve values
const curvePrecision = 3

// Report is everything a renderer needs for one scenario family: the
// summary text, the data table, the sampled curve and the raw result.
type Report struct {
	Family  string               `json:"family" yaml:"family"`
	RunID   string               `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Summary Summary              `json:"summary" yaml:"summary"`
	Table   []Row                `json:"table" yaml:"table"`
	Curve   []model.CurvePoint   `json:"curve,omitempty" yaml:"curve,omitempty"`
	Result  model.AnalysisResult `json:"result" yaml:"result"`
	Errors  []string             `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewReport summarizes result for method and samples the fitted curve at
// curvePoints points across the observed concurrency range. Curve values are
// rounded for plotting; Result keeps full precision.
func NewReport(family string, set *model.SampleSet, result model.AnalysisResult,
	method model.Method, curvePoints int) Report {
	r := Report{
		Family:  family,
		Summary: Summarize(result, method),
		Table:   Table(set, result.Fit),
		Result:  result,
	}
	if result.Fit.Converged {
		r.Curve = logistic.Curve(result.Fit, set.MinConcurrency(), set.MaxConcurrency(), curvePoints)
		for i := range r.Curve {
			r.Curve[i].Value = utils.FormatFloat(r.Curve[i].Value, curvePrecision)
		}
	}

	if result.FitError != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("fit: %v", result.FitError))
	}
	for i, err := range result.BreakpointErrors {
		if err != nil && i < len(result.Breakpoints) {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", result.Breakpoints[i].Method, err))
		}
	}
	return r
}
