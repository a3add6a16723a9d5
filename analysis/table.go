package analysis

import (
	"github.com/uyouii/capacity-model/logistic"
	"github.com/uyouii/capacity-model/model"
)

// Row compares observed and fitted throughput at one concurrency. Estimated
// is nil when the fit did not converge.
type Row struct {
	Concurrency int      `json:"concurrency" yaml:"concurrency"`
	Observed    float64  `json:"observed" yaml:"observed"`
	Estimated   *float64 `json:"estimated,omitempty" yaml:"estimated,omitempty"`
}

func Table(set *model.SampleSet, fit model.FitResult) []Row {
	points := set.Points()
	res := make([]Row, 0, len(points))
	for _, p := range points {
		row := Row{Concurrency: p.Concurrency, Observed: p.Throughput}
		if fit.Converged {
			estimated := logistic.Evaluate(fit, float64(p.Concurrency))
			row.Estimated = &estimated
		}
		res = append(res, row)
	}
	return res
}
