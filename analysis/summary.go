package analysis

import (
	"fmt"
	"math"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/logistic"
	"github.com/uyouii/capacity-model/model"
)

// Summary holds the headline numbers of an analysis for one breakpoint method.
type Summary struct {
	Method     model.Method `json:"method" yaml:"method"`
	Breakpoint float64      `json:"breakpoint" yaml:"breakpoint"`
	Valid      bool         `json:"valid" yaml:"valid"`
	// estimated maximum throughput, the fitted L
	Capacity float64 `json:"capacity" yaml:"capacity"`
	// highest concurrency worth running, the breakpoint rounded down
	MaxConcurrency int  `json:"max_concurrency" yaml:"max_concurrency"`
	Fitted         bool `json:"fitted" yaml:"fitted"`
	Declining      bool `json:"declining" yaml:"declining"`

	FitError        common.ErrorKind `json:"fit_error,omitempty" yaml:"fit_error,omitempty"`
	BreakpointError common.ErrorKind `json:"breakpoint_error,omitempty" yaml:"breakpoint_error,omitempty"`
}

// Summarize reads the breakpoint of method from result. A method that was not
// run is reported as an invalid value.
func Summarize(result model.AnalysisResult, method model.Method) Summary {
	s := Summary{
		Method:   method,
		Fitted:   result.Fit.Converged,
		FitError: common.KindOf(result.FitError),
	}
	if result.Fit.Converged {
		s.Capacity = result.Fit.L
		s.Declining = result.Fit.Declining()
	}

	bp, ok := result.Breakpoint(method)
	if !ok {
		s.BreakpointError = common.KindInvalidValue
		return s
	}
	s.Breakpoint = bp.Value
	s.Valid = bp.Valid
	s.BreakpointError = common.KindOf(result.BreakpointError(method))
	if bp.Valid {
		s.MaxConcurrency = int(math.Floor(bp.Value))
	}
	return s
}

// Lines renders the summary as report text.
func (s Summary) Lines() []string {
	if !s.Fitted && s.Method == model.LogisticMidpoint {
		return []string{
			fmt.Sprintf("The logistic regression could not be fitted (%s).", s.FitError),
			fmt.Sprintf("It needs at least %d samples with varying throughput.", logistic.MinFitPoints),
		}
	}

	res := []string{}
	if s.Valid {
		res = append(res, fmt.Sprintf("Breakpoint (%s): %.2f concurrent users", s.Method, s.Breakpoint))
	} else {
		res = append(res, fmt.Sprintf("Breakpoint (%s): not available (%s)", s.Method, s.BreakpointError))
	}
	if s.Fitted {
		res = append(res, fmt.Sprintf("Estimated maximum capacity (L): %.2f TPS", s.Capacity))
	}
	if s.Declining {
		res = append(res, "Warning: throughput declines as concurrency grows.")
	}
	if s.Valid {
		res = append(res, fmt.Sprintf("Recommendation: do not exceed %d concurrent users to stay efficient.",
			s.MaxConcurrency))
	}
	return res
}
