package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/utils"
)

// SamplePoint is the measured throughput of one load-test scenario.
type SamplePoint struct {
	Concurrency int     `json:"concurrency" yaml:"concurrency"`
	Throughput  float64 `json:"throughput" yaml:"throughput"`
}

// SampleSet is sorted ascending by concurrency, with unique concurrency
// values, and is never modified after NewSampleSet returns.
type SampleSet struct {
	points []SamplePoint
}

// NewSampleSet copies and sorts points. Duplicated concurrency values are
// rejected; merge them before building the set (see ingest.Aggregate).
func NewSampleSet(points []SamplePoint) (*SampleSet, error) {
	sorted := make([]SamplePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Concurrency < sorted[j].Concurrency
	})

	for i, p := range sorted {
		if p.Concurrency <= 0 {
			return nil, fmt.Errorf("concurrency %d must be positive: %w", p.Concurrency, common.ErrorInvalidValue)
		}
		if !utils.IsFinite(p.Throughput) || p.Throughput < 0 {
			return nil, fmt.Errorf("throughput %v at concurrency %d: %w", p.Throughput, p.Concurrency, common.ErrorInvalidValue)
		}
		if i > 0 && sorted[i-1].Concurrency == p.Concurrency {
			return nil, fmt.Errorf("duplicated concurrency %d: %w", p.Concurrency, common.ErrorInvalidValue)
		}
	}

	return &SampleSet{points: sorted}, nil
}

func (s *SampleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.points)
}

func (s *SampleSet) IsEmpty() bool {
	return s.Len() == 0
}

// Points returns a copy of the samples in ascending concurrency order.
func (s *SampleSet) Points() []SamplePoint {
	res := make([]SamplePoint, s.Len())
	if s != nil {
		copy(res, s.points)
	}
	return res
}

func (s *SampleSet) Concurrencies() []float64 {
	res := make([]float64, s.Len())
	for i := range res {
		res[i] = float64(s.points[i].Concurrency)
	}
	return res
}

func (s *SampleSet) Throughputs() []float64 {
	res := make([]float64, s.Len())
	for i := range res {
		res[i] = s.points[i].Throughput
	}
	return res
}

// MinConcurrency returns NaN for an empty set, like MaxConcurrency and MedianConcurrency.
func (s *SampleSet) MinConcurrency() float64 {
	if s.IsEmpty() {
		return math.NaN()
	}
	return float64(s.points[0].Concurrency)
}

func (s *SampleSet) MaxConcurrency() float64 {
	if s.IsEmpty() {
		return math.NaN()
	}
	return float64(s.points[len(s.points)-1].Concurrency)
}

func (s *SampleSet) MedianConcurrency() float64 {
	return utils.Median(s.Concurrencies())
}

// Contains reports whether x lies inside [MinConcurrency, MaxConcurrency].
func (s *SampleSet) Contains(x float64) bool {
	if s.IsEmpty() || math.IsNaN(x) {
		return false
	}
	return x >= s.MinConcurrency() && x <= s.MaxConcurrency()
}

func (s *SampleSet) DebugString() string {
	if s.IsEmpty() {
		return "sampleCount: 0"
	}
	return fmt.Sprintf("sampleCount: %v, concurrency: [%v, %v]", s.Len(), s.MinConcurrency(), s.MaxConcurrency())
}
