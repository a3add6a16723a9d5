package analysis

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/model"
)

const outcomeConverged = "converged"

// Metrics counts analysis outcomes. Collectors are registered on the
// registerer given to NewMetrics; a nil registerer leaves them unregistered.
type Metrics struct {
	fits        *prometheus.CounterVec
	breakpoints *prometheus.CounterVec
	evaluations prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		fits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capacity_fits_total",
				Help: "Total number of logistic fits by outcome",
			},
			[]string{"outcome"},
		),
		breakpoints: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capacity_breakpoints_total",
				Help: "Total number of detected breakpoints by method and validity",
			},
			[]string{"method", "valid"},
		),
		evaluations: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "capacity_fit_evaluations",
				Help:    "Objective evaluations spent per logistic fit",
				Buckets: prometheus.ExponentialBuckets(1, 2, 15),
			},
		),
	}
}

func (m *Metrics) observe(result model.AnalysisResult) {
	outcome := outcomeConverged
	if !result.Fit.Converged {
		outcome = string(common.KindOf(result.FitError))
	}
	m.fits.WithLabelValues(outcome).Inc()
	m.evaluations.Observe(float64(result.Fit.Evaluations))

	for _, bp := range result.Breakpoints {
		m.breakpoints.WithLabelValues(bp.Method.String(), strconv.FormatBool(bp.Valid)).Inc()
	}
}
