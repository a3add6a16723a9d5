package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/uyouii/capacity-model/analysis"
	"github.com/uyouii/capacity-model/config"
	"github.com/uyouii/capacity-model/ingest"
	"github.com/uyouii/capacity-model/model"
	"github.com/uyouii/capacity-model/utils"
)

type Flags struct {
	ConfigFile *string
	Dirs       *string
	Samples    *string
	Format     *string
	LogLevel   *string
	MetricsOut *string
}

func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		ConfigFile: fs.String("config", "", "YAML configuration file"),
		Dirs:       fs.String("dir", "", "Comma separated load-test directories holding one sub-directory per scenario"),
		Samples:    fs.String("samples", "", "YAML file mapping a family name to its (concurrency, throughput) samples"),
		Format:     fs.String("format", "json", "Output format: json or yaml"),
		LogLevel:   fs.String("log-level", "", "Override the configured log level"),
		MetricsOut: fs.String("metrics", "", "Write the run metrics in Prometheus text format to this file"),
	}
}

func (f *Flags) LoadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *f.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(*f.ConfigFile); err != nil {
			return nil, err
		}
	}
	if *f.LogLevel != "" {
		cfg.LogLevel = *f.LogLevel
	}
	return cfg, nil
}

func main() {
	fs := flag.NewFlagSet("capfit", flag.ExitOnError)
	f := SetupFlags(fs)
	fs.Parse(os.Args[1:])

	if *f.Dirs == "" && *f.Samples == "" {
		fmt.Fprintln(os.Stderr, "one of -dir or -samples is required")
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, f, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run fails only on configuration and I/O errors. Analysis failures are part
// of the printed reports.
func run(ctx context.Context, f *Flags, stdout, stderr io.Writer) error {
	if *f.Format != "json" && *f.Format != "yaml" {
		return fmt.Errorf("unknown output format %q", *f.Format)
	}
	cfg, err := f.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	logger := utils.GetLogger(ctx)

	families, skipped, err := loadFamilies(ctx, f, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	batch, err := analysis.NewRunner(cfg, reg).Run(ctx, families)
	if err != nil {
		logger.Warn("analysis interrupted, printing partial results", zap.Error(err))
	}

	names := make([]string, 0, len(batch.Results))
	for name := range batch.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	reports := make([]analysis.Report, 0, len(names))
	for _, name := range names {
		report := analysis.NewReport(name, families[name], batch.Results[name],
			cfg.Breakpoint.Report, cfg.CurvePoints)
		report.RunID = batch.RunID
		for _, err := range skipped[name] {
			report.Errors = append(report.Errors, err.Error())
		}
		reports = append(reports, report)

		fmt.Fprintf(stderr, "== %s ==\n", name)
		for _, line := range report.Summary.Lines() {
			fmt.Fprintln(stderr, line)
		}
	}

	if err := writeReports(stdout, *f.Format, reports); err != nil {
		return err
	}

	if *f.MetricsOut != "" {
		if err := prometheus.WriteToTextfile(*f.MetricsOut, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

// loadFamilies also returns, per family, the scenario directories that could
// not be read.
func loadFamilies(ctx context.Context, f *Flags,
	cfg *config.Config) (map[string]*model.SampleSet, map[string][]error, error) {
	raw := map[string][]model.SamplePoint{}
	skippedByFamily := map[string][]error{}

	if *f.Samples != "" {
		file, err := os.Open(*f.Samples)
		if err != nil {
			return nil, nil, err
		}
		defer file.Close()

		if raw, err = ingest.ReadFamilies(file); err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", *f.Samples, err)
		}
	}

	opts := cfg.ScanOptions()
	for _, dir := range strings.Split(*f.Dirs, ",") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		points, skipped, err := ingest.ScanScenarios(ctx, dir, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
		name := filepath.Base(filepath.Clean(dir))
		if len(skipped) > 0 {
			utils.GetLogger(ctx).Warn("scenarios skipped", zap.String("dir", dir), zap.Int("count", len(skipped)))
			skippedByFamily[name] = append(skippedByFamily[name], skipped...)
		}
		raw[name] = append(raw[name], points...)
	}

	families := make(map[string]*model.SampleSet, len(raw))
	for name, points := range raw {
		set, err := ingest.NewSampleSet(points)
		if err != nil {
			return nil, nil, fmt.Errorf("family %s: %w", name, err)
		}
		families[name] = set
	}
	return families, skippedByFamily, nil
}

func writeReports(w io.Writer, format string, reports []analysis.Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}
