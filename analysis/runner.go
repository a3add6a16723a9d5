package analysis

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uyouii/capacity-model/config"
	"github.com/uyouii/capacity-model/model"
	"github.com/uyouii/capacity-model/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Batch is the outcome of one Runner.Run call, keyed by family name.
type Batch struct {
	RunID   string
	Results map[string]model.AnalysisResult
}

// Runner analyzes independent scenario families on a bounded number of
// goroutines.
type Runner struct {
	analyzer *Analyzer
	workers  int
	metrics  *Metrics
}

// NewRunner builds a runner from cfg (config.Default() when nil) and
// registers its metrics on reg.
func NewRunner(cfg *config.Config, reg prometheus.Registerer) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	workers := cfg.Batch.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		analyzer: NewAnalyzer(cfg),
		workers:  workers,
		metrics:  NewMetrics(reg),
	}
}

// Run analyzes every family. Families are dispatched in name order; once ctx
// is done no further family is started, analyses already running finish, and
// Run returns the partial batch with ctx.Err().
func (r *Runner) Run(ctx context.Context, families map[string]*model.SampleSet) (*Batch, error) {
	batch := &Batch{
		RunID:   uuid.NewString(),
		Results: make(map[string]model.AnalysisResult, len(families)),
	}
	logger := utils.GetLogger(ctx).With(zap.String("run_id", batch.RunID))
	logger.Info("analysis batch started", zap.Int("families", len(families)), zap.Int("workers", r.workers))

	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, name := range names {
		// Go blocks while all workers are busy
		if gctx.Err() != nil {
			break
		}
		name, set := name, families[name]
		g.Go(func() error {
			familyCtx := utils.WithLogger(ctx, logger.With(zap.String("family", name)))
			result := r.analyzer.Analyze(familyCtx, set)
			r.metrics.observe(result)

			mu.Lock()
			batch.Results[name] = result
			mu.Unlock()
			return nil
		})
	}
	// analyses report their failures inside the result, never through the group
	_ = g.Wait()

	if err := ctx.Err(); err != nil && len(batch.Results) < len(families) {
		logger.Warn("analysis batch interrupted", zap.Int("done", len(batch.Results)),
			zap.Int("families", len(families)), zap.Error(err))
		return batch, err
	}
	logger.Info("analysis batch finished", zap.Int("families", len(batch.Results)))
	return batch, nil
}
