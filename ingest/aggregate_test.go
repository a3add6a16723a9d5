package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/model"
)

func TestAggregate(t *testing.T) {
	points := []model.SamplePoint{
		{Concurrency: 20, Throughput: 90},
		{Concurrency: 10, Throughput: 50},
		{Concurrency: 20, Throughput: 100},
		{Concurrency: 30, Throughput: 140},
		{Concurrency: 20, Throughput: 95},
	}

	assert.Equal(t, []model.SamplePoint{
		{Concurrency: 10, Throughput: 50},
		{Concurrency: 20, Throughput: 95},
		{Concurrency: 30, Throughput: 140},
	}, Aggregate(points))
	assert.Empty(t, Aggregate(nil))
}

func TestNewSampleSet(t *testing.T) {
	set, err := NewSampleSet([]model.SamplePoint{
		{Concurrency: 10, Throughput: 40},
		{Concurrency: 10, Throughput: 60},
		{Concurrency: 5, Throughput: 30},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 10}, set.Concurrencies())
	assert.Equal(t, []float64{30, 50}, set.Throughputs())

	_, err = NewSampleSet([]model.SamplePoint{{Concurrency: 0, Throughput: 1}})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestReadFamilies(t *testing.T) {
	data := `
checkout:
  - {concurrency: 10, throughput: 50}
  - {concurrency: 20, throughput: 95}
search:
  - concurrency: 5
    throughput: 12.5
`
	families, err := ReadFamilies(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, map[string][]model.SamplePoint{
		"checkout": {{Concurrency: 10, Throughput: 50}, {Concurrency: 20, Throughput: 95}},
		"search":   {{Concurrency: 5, Throughput: 12.5}},
	}, families)

	families, err = ReadFamilies(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, families)

	_, err = ReadFamilies(strings.NewReader("checkout: [1, 2"))
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}
