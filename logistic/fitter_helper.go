package logistic

import (
	"context"
	"fmt"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/model"
	"github.com/uyouii/capacity-model/utils"
	"go.uber.org/zap"
)

// FitSampleSet runs fitter (the default one when nil) on set and logs the
// outcome. A panic inside the solver is turned into ErrorNonConvergence.
func FitSampleSet(ctx context.Context, fitter *Fitter, set *model.SampleSet) (res model.FitResult, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("FitSampleSet recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()), zap.String("samples", set.DebugString()))
			res = model.FitResult{}
			err = fmt.Errorf("panic during logistic fit: %v: %w", r, common.ErrorNonConvergence)
		}
	}()

	if fitter == nil {
		fitter = NewFitter()
	}

	res, err = fitter.Fit(set)
	if err != nil {
		logger.Warn("logistic fit failed", zap.Error(err), zap.String("samples", set.DebugString()),
			zap.Int("evaluations", res.Evaluations))
		return res, err
	}

	if res.Declining() {
		logger.Info("logistic fit has a negative growth rate", zap.Float64("k", res.K))
	}
	logger.Debug("logistic fit converged", zap.Float64("L", res.L), zap.Float64("k", res.K),
		zap.Float64("x0", res.X0), zap.Float64("residual", res.Residual), zap.Int("evaluations", res.Evaluations))
	return res, nil
}
