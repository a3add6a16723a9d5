package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/uyouii/capacity-model/analysis"
	"github.com/uyouii/capacity-model/utils"
)

const samplesYAML = `
checkout:
  - {concurrency: 10, throughput: 50}
  - {concurrency: 20, throughput: 95}
  - {concurrency: 30, throughput: 140}
  - {concurrency: 40, throughput: 155}
  - {concurrency: 50, throughput: 158}
login:
  - {concurrency: 5, throughput: 20}
  - {concurrency: 10, throughput: 38}
`

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("capfit", flag.ContinueOnError)
	f := SetupFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestRunSamplesJSON(t *testing.T) {
	t.Cleanup(func() { _ = utils.SetLevel("info") })
	dir := t.TempDir()
	samples := filepath.Join(dir, "samples.yaml")
	metrics := filepath.Join(dir, "metrics.prom")
	writeFile(t, samples, samplesYAML)

	var stdout, stderr bytes.Buffer
	f := parseFlags(t, "-samples", samples, "-metrics", metrics, "-log-level", "error")
	require.NoError(t, run(context.Background(), f, &stdout, &stderr))

	var reports []analysis.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &reports))
	require.Len(t, reports, 2)

	assert.Equal(t, "checkout", reports[0].Family)
	assert.NotEmpty(t, reports[0].RunID)
	assert.True(t, reports[0].Summary.Valid)
	assert.Equal(t, 16, reports[0].Summary.MaxConcurrency)
	assert.Len(t, reports[0].Curve, 200)
	assert.Len(t, reports[0].Result.Breakpoints, 2)

	assert.Equal(t, "login", reports[1].Family)
	assert.False(t, reports[1].Summary.Fitted)
	assert.NotEmpty(t, reports[1].Errors)

	assert.Contains(t, stderr.String(), "== checkout ==")
	assert.Contains(t, stderr.String(), "do not exceed 16 concurrent users")

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `capacity_fits_total{outcome="converged"} 1`)
}

func TestRunScenarioDirYAML(t *testing.T) {
	t.Cleanup(func() { _ = utils.SetLevel("info") })
	root := filepath.Join(t.TempDir(), "checkout")
	for name, data := range map[string]string{
		"Escenario10": "timeStamp\n0\n1000\n2000\n",
		"Escenario20": "timeStamp\n0\n500\n1000\n1500\n2000\n",
		"Escenario30": "timeStamp\n0\n400\n800\n1200\n1600\n2000\n",
		"Escenario40": "timeStamp\n0\n400\n800\n1200\n1600\n2000\n2000\n",
		"Escenario50": "elapsed\n1\n2\n",
	} {
		writeFile(t, filepath.Join(root, name, "resultados.jtl"), data)
	}
	cfgFile := filepath.Join(t.TempDir(), "capfit.yaml")
	writeFile(t, cfgFile, "breakpoint:\n  methods: [piecewise_linear_knot]\nlog_level: error\n")

	var stdout, stderr bytes.Buffer
	f := parseFlags(t, "-dir", root, "-config", cfgFile, "-format", "yaml")
	require.NoError(t, run(context.Background(), f, &stdout, &stderr))

	var reports []map[string]any
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "checkout", reports[0]["family"])

	table, ok := reports[0]["table"].([]any)
	require.True(t, ok)
	assert.Len(t, table, 4)

	errs, ok := reports[0]["errors"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[len(errs)-1], "scenario Escenario50: resultados.jtl: jtl file has no timeStamp column")
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	samples := filepath.Join(dir, "samples.yaml")
	writeFile(t, samples, samplesYAML)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing samples", args: []string{"-samples", filepath.Join(dir, "missing.yaml")}},
		{name: "missing dir", args: []string{"-dir", filepath.Join(dir, "missing")}},
		{name: "bad format", args: []string{"-samples", samples, "-format", "xml"}},
		{name: "missing config", args: []string{"-samples", samples, "-config", filepath.Join(dir, "none.yaml")}},
		{name: "bad log level", args: []string{"-samples", samples, "-log-level", "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(context.Background(), parseFlags(t, tt.args...), &stdout, &stderr))
		})
	}
}
