package config

import (
	"fmt"
	"os"

	"github.com/uyouii/capacity-model/breakpoint"
	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/ingest"
	"github.com/uyouii/capacity-model/logistic"
	"github.com/uyouii/capacity-model/model"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of one capfit run.
type Config struct {
	Fit        Fit        `yaml:"fit"`
	Breakpoint Breakpoint `yaml:"breakpoint"`
	Ingest     Ingest     `yaml:"ingest"`
	Batch      Batch      `yaml:"batch"`
	// number of points sampled from the fitted curve for plotting
	CurvePoints int    `yaml:"curve_points"`
	LogLevel    string `yaml:"log_level"` // zap level name: debug, info, warn, error
}

type Fit struct {
	MaxEvaluations    int     `yaml:"max_evaluations"`
	InitialGrowthRate float64 `yaml:"initial_growth_rate"` // k0 of the initial guess
	Tolerance         float64 `yaml:"tolerance"`
}

type Breakpoint struct {
	Methods []model.Method `yaml:"methods"` // logistic_midpoint, piecewise_linear_knot
	// Report is the method whose breakpoint the summary uses, the first
	// listed method when unset.
	Report          model.Method `yaml:"report"`
	KnotEvaluations int          `yaml:"knot_evaluations"`
}

type Ingest struct {
	Prefixes   []string `yaml:"prefixes"`    // scenario directory name prefixes
	ResultFile string   `yaml:"result_file"` // JTL file inside each scenario directory
}

type Batch struct {
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, fills unset fields with defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %v: %w", err, common.ErrorInvalidValue)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Fit.MaxEvaluations == 0 {
		c.Fit.MaxEvaluations = logistic.DefaultMaxEvaluations
	}
	if c.Fit.InitialGrowthRate == 0 {
		c.Fit.InitialGrowthRate = logistic.DefaultInitialGrowthRate
	}
	if c.Fit.Tolerance == 0 {
		c.Fit.Tolerance = logistic.DefaultTolerance
	}

	if len(c.Breakpoint.Methods) == 0 {
		c.Breakpoint.Methods = model.AllMethods()
	}
	if c.Breakpoint.Report == 0 {
		c.Breakpoint.Report = c.Breakpoint.Methods[0]
	}
	if c.Breakpoint.KnotEvaluations == 0 {
		c.Breakpoint.KnotEvaluations = breakpoint.DefaultKnotEvaluations
	}

	scan := ingest.DefaultScanOptions()
	if len(c.Ingest.Prefixes) == 0 {
		c.Ingest.Prefixes = scan.Prefixes
	}
	if c.Ingest.ResultFile == "" {
		c.Ingest.ResultFile = scan.ResultFile
	}

	if c.Batch.Workers == 0 {
		c.Batch.Workers = 4
	}
	if c.CurvePoints == 0 {
		c.CurvePoints = logistic.DefaultCurvePoints
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Fit.MaxEvaluations < 0:
		return fmt.Errorf("fit.max_evaluations %d: %w", c.Fit.MaxEvaluations, common.ErrorInvalidValue)
	case c.Fit.Tolerance < 0:
		return fmt.Errorf("fit.tolerance %v: %w", c.Fit.Tolerance, common.ErrorInvalidValue)
	case c.Breakpoint.KnotEvaluations < 0:
		return fmt.Errorf("breakpoint.knot_evaluations %d: %w", c.Breakpoint.KnotEvaluations, common.ErrorInvalidValue)
	case c.Batch.Workers < 0:
		return fmt.Errorf("batch.workers %d: %w", c.Batch.Workers, common.ErrorInvalidValue)
	case c.CurvePoints < 0:
		return fmt.Errorf("curve_points %d: %w", c.CurvePoints, common.ErrorInvalidValue)
	}

	reported := false
	seen := map[model.Method]bool{}
	for _, method := range c.Breakpoint.Methods {
		if seen[method] {
			return fmt.Errorf("breakpoint method %v listed twice: %w", method, common.ErrorInvalidValue)
		}
		seen[method] = true
		reported = reported || method == c.Breakpoint.Report
	}
	if !reported {
		return fmt.Errorf("reported breakpoint method %v is not in breakpoint.methods: %w",
			c.Breakpoint.Report, common.ErrorInvalidValue)
	}
	return nil
}

// FitterOptions translates the fit section into logistic options.
func (c *Config) FitterOptions() []logistic.Option {
	return []logistic.Option{
		logistic.WithMaxEvaluations(c.Fit.MaxEvaluations),
		logistic.WithInitialGrowthRate(c.Fit.InitialGrowthRate),
		logistic.WithTolerance(c.Fit.Tolerance),
	}
}

func (c *Config) ScanOptions() ingest.ScanOptions {
	prefixes := make([]string, len(c.Ingest.Prefixes))
	copy(prefixes, c.Ingest.Prefixes)
	return ingest.ScanOptions{Prefixes: prefixes, ResultFile: c.Ingest.ResultFile}
}

func (c *Config) DetectorOptions() []breakpoint.Option {
	return []breakpoint.Option{breakpoint.WithKnotEvaluations(c.Breakpoint.KnotEvaluations)}
}
