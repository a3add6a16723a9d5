package ingest

import (
	"sort"

	"github.com/uyouii/capacity-model/model"
	"gonum.org/v1/gonum/stat"
)

// Aggregate merges points sharing a concurrency into one point carrying the
// mean throughput, and returns the result sorted by concurrency.
func Aggregate(points []model.SamplePoint) []model.SamplePoint {
	groups := map[int][]float64{}
	for _, p := range points {
		groups[p.Concurrency] = append(groups[p.Concurrency], p.Throughput)
	}

	res := make([]model.SamplePoint, 0, len(groups))
	for concurrency, throughputs := range groups {
		res = append(res, model.SamplePoint{Concurrency: concurrency, Throughput: stat.Mean(throughputs, nil)})
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Concurrency < res[j].Concurrency
	})
	return res
}

// NewSampleSet aggregates points and builds a sample set from them.
func NewSampleSet(points []model.SamplePoint) (*model.SampleSet, error) {
	return model.NewSampleSet(Aggregate(points))
}
