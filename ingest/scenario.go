package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/model"
	"github.com/uyouii/capacity-model/utils"
	"go.uber.org/zap"
)

// ScanOptions select the scenario directories of a load-test run.
type ScanOptions struct {
	// directory name prefixes, matched case-insensitively
	Prefixes []string
	// result file name inside each scenario directory
	ResultFile string
}

func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Prefixes:   []string{"escenario", "scenario"},
		ResultFile: "resultados.jtl",
	}
}

// ScenarioError records why one scenario directory was skipped.
type ScenarioError struct {
	Dir string
	Err error
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("scenario %s: %v", e.Dir, e.Err)
}

func (e *ScenarioError) Unwrap() error {
	return e.Err
}

// ScanScenarios reads one sample per scenario directory directly under dir.
// The concurrency of a scenario is the number formed by the digits of its
// directory name, so "Escenario50" is 50 concurrent users. Directories that
// fail are reported in the returned ScenarioErrors and skipped; err is only
// set when dir itself cannot be read.
func ScanScenarios(ctx context.Context, dir string, opts ScanOptions) ([]model.SamplePoint, []error, error) {
	logger := utils.GetLogger(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	points := []model.SamplePoint{}
	skipped := []error{}
	for _, entry := range entries {
		if !entry.IsDir() || !hasPrefix(entry.Name(), opts.Prefixes) {
			continue
		}

		point, err := readScenario(filepath.Join(dir, entry.Name()), opts.ResultFile)
		if err != nil {
			logger.Warn("skip scenario", zap.String("dir", entry.Name()), zap.Error(err))
			skipped = append(skipped, &ScenarioError{Dir: entry.Name(), Err: err})
			continue
		}
		logger.Debug("scenario read", zap.String("dir", entry.Name()),
			zap.Int("concurrency", point.Concurrency), zap.Float64("throughput", point.Throughput))
		points = append(points, point)
	}

	return points, skipped, nil
}

func readScenario(path, resultFile string) (model.SamplePoint, error) {
	concurrency, err := ParseConcurrency(filepath.Base(path))
	if err != nil {
		return model.SamplePoint{}, err
	}

	f, err := os.Open(filepath.Join(path, resultFile))
	if err != nil {
		return model.SamplePoint{}, err
	}
	defer f.Close()

	throughput, err := ReadThroughput(f)
	if err != nil {
		return model.SamplePoint{}, fmt.Errorf("%s: %w", resultFile, err)
	}
	return model.SamplePoint{Concurrency: concurrency, Throughput: throughput}, nil
}

// ParseConcurrency joins every digit of name into one number.
func ParseConcurrency(name string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, name)
	if digits == "" {
		return 0, fmt.Errorf("no concurrency in directory name %q: %w", name, common.ErrorInvalidValue)
	}

	concurrency, err := strconv.Atoi(digits)
	if err != nil || concurrency <= 0 {
		return 0, fmt.Errorf("concurrency %q in directory name %q: %w", digits, name, common.ErrorInvalidValue)
	}
	return concurrency, nil
}

func hasPrefix(name string, prefixes []string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}
