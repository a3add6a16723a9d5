package analysis

import (
	"context"
	"fmt"

	"github.com/uyouii/capacity-model/breakpoint"
	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/config"
	"github.com/uyouii/capacity-model/logistic"
	"github.com/uyouii/capacity-model/model"
	"github.com/uyouii/capacity-model/utils"
	"go.uber.org/zap"
)

// Analyzer fits a sample set and derives the configured breakpoints from it.
// It holds configuration only and may be shared between goroutines.
type Analyzer struct {
	fitter   *logistic.Fitter
	detector *breakpoint.Detector
	methods  []model.Method
}

// NewAnalyzer builds an analyzer from cfg, or from config.Default() when cfg is nil.
func NewAnalyzer(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}
	methods := make([]model.Method, len(cfg.Breakpoint.Methods))
	copy(methods, cfg.Breakpoint.Methods)

	return &Analyzer{
		fitter:   logistic.NewFitter(cfg.FitterOptions()...),
		detector: breakpoint.NewDetector(cfg.DetectorOptions()...),
		methods:  methods,
	}
}

// Analyze is NewAnalyzer(cfg).Analyze(ctx, set).
func Analyze(ctx context.Context, set *model.SampleSet, cfg *config.Config) model.AnalysisResult {
	return NewAnalyzer(cfg).Analyze(ctx, set)
}

// Analyze never fails as a whole: the outcome of the fit and of every
// breakpoint method is stored in the result.
func (a *Analyzer) Analyze(ctx context.Context, set *model.SampleSet) model.AnalysisResult {
	var res model.AnalysisResult
	res.Fit, res.FitError = logistic.FitSampleSet(ctx, a.fitter, set)
	res.Breakpoints, res.BreakpointErrors = a.detect(ctx, set, res.Fit)
	return res
}

func (a *Analyzer) detect(ctx context.Context, set *model.SampleSet,
	fit model.FitResult) (results []model.BreakpointResult, errs []error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("detect breakpoints recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()), zap.String("samples", set.DebugString()))
			results = make([]model.BreakpointResult, len(a.methods))
			errs = make([]error, len(a.methods))
			for i, method := range a.methods {
				results[i] = model.BreakpointResult{Method: method}
				errs[i] = fmt.Errorf("panic during breakpoint detection: %v: %w", r, common.ErrorNonConvergence)
			}
		}
	}()

	results, errs = a.detector.DetectAll(a.methods, set, fit)
	for i, err := range errs {
		if err != nil {
			logger.Warn("breakpoint not valid", zap.Stringer("method", a.methods[i]),
				zap.Float64("value", results[i].Value), zap.Error(err))
			continue
		}
		logger.Debug("breakpoint detected", zap.Stringer("method", a.methods[i]),
			zap.Float64("value", results[i].Value))
	}
	return results, errs
}
