package breakpoint

import (
	"fmt"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/model"
)

// Midpoint reports the fitted inflection point x0, where throughput reaches
// half of the estimated capacity.
type Midpoint struct{}

func NewMidpoint() *Midpoint {
	return &Midpoint{}
}

func (*Midpoint) Method() model.Method {
	return model.LogisticMidpoint
}

func (*Midpoint) Detect(set *model.SampleSet, fit model.FitResult) (model.BreakpointResult, error) {
	res := model.BreakpointResult{Method: model.LogisticMidpoint}
	if !fit.Converged {
		return res, fmt.Errorf("logistic fit did not converge: %w", common.ErrorNonConvergence)
	}

	res.Value = fit.X0
	if !set.Contains(fit.X0) {
		return res, fmt.Errorf("midpoint %v outside %s: %w", fit.X0, set.DebugString(), common.ErrorOutOfDomain)
	}
	res.Valid = true
	return res, nil
}
