// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

// Package ddsketch implements DDSketch, a fully mergeable quantile sketch
// with relative-error guarantees, as described in Masson, Rim & Lee,
// "DDSketch: A Fast and Fully-Mergeable Quantile Sketch with Relative-Error
// Guarantees" (VLDB 2019).
package ddsketch

import (
	"math"

	"github.com/quantile-sketches/relacc/ddsketch/mapping"
	"github.com/quantile-sketches/relacc/ddsketch/stat"
	"github.com/quantile-sketches/relacc/ddsketch/store"
)

const (
	// DefaultRelativeAccuracy is the α used by the parameterless
	// constructors.
	DefaultRelativeAccuracy = 0.01
	// DefaultBinLimit is the bin_limit used by the collapsing
	// constructors.
	DefaultBinLimit = 2048
)

// DDSketch ties a key mapping to a positive store, a negative store, a
// zero-value counter, and running summary statistics. Values are never
// mutated once ingested: Add records a value and weight, GetQuantileValue
// answers an approximate rank query, and Merge folds in another sketch's
// state without touching the source.
//
// DDSketch is not safe for concurrent use; callers must serialize access
// to a single instance themselves.
type DDSketch struct {
	mapping.IndexMapping
	positiveStore store.Store
	negativeStore store.Store
	zeroCount     float64
	summary       *stat.SummaryStatistics
}

// NewDDSketch builds a sketch from an already-constructed mapping and pair
// of stores. Most callers want one of the named constructors below
// instead.
func NewDDSketch(m mapping.IndexMapping, positiveStore, negativeStore store.Store) *DDSketch {
	return &DDSketch{
		IndexMapping:  m,
		positiveStore: positiveStore,
		negativeStore: negativeStore,
		summary:       stat.NewSummaryStatistics(),
	}
}

// NewDefaultDDSketch returns an unbounded DDSketch using the logarithmic
// mapping at the given relative accuracy.
func NewDefaultDDSketch(relativeAccuracy float64) (*DDSketch, error) {
	m, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(m, store.NewDenseStore(), store.NewDenseStore()), nil
}

// NewLogCollapsingLowestDDSketch returns a DDSketch whose positive and
// negative stores fold their smallest-magnitude keys into a boundary bin
// once binLimit bins would otherwise be needed, bounding memory use while
// trading accuracy away from the tail nearest zero.
func NewLogCollapsingLowestDDSketch(relativeAccuracy float64, binLimit int) (*DDSketch, error) {
	m, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(
		m,
		store.NewCollapsingLowestDenseStore(binLimit),
		store.NewCollapsingLowestDenseStore(binLimit),
	), nil
}

// NewLogCollapsingHighestDDSketch is NewLogCollapsingLowestDDSketch but
// folds the largest-magnitude keys instead, trading accuracy away from the
// tail farthest from zero.
func NewLogCollapsingHighestDDSketch(relativeAccuracy float64, binLimit int) (*DDSketch, error) {
	m, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return NewDDSketch(
		m,
		store.NewCollapsingHighestDenseStore(binLimit),
		store.NewCollapsingHighestDenseStore(binLimit),
	), nil
}

// Add records value with weight 1.
func (s *DDSketch) Add(value float64) error {
	return s.AddWithCount(value, 1)
}

// AddWithCount records value with the given (positive) weight. It fails
// with InvalidArgumentError if weight is non-positive or value is
// NaN/infinite.
func (s *DDSketch) AddWithCount(value, weight float64) error {
	if weight <= 0 {
		return invalidArgument("weight", "must be positive")
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return invalidArgument("value", "must be finite")
	}

	switch {
	case value > s.MinIndexableValue():
		s.positiveStore.Add(s.Key(value), weight)
	case value < -s.MinIndexableValue():
		s.negativeStore.Add(s.Key(-value), weight)
	default:
		s.zeroCount += weight
	}

	s.summary.Add(value, weight)
	return nil
}

// GetQuantileValue returns the value at rank q, or false if q is outside
// [0, 1] or the sketch holds no values.
func (s *DDSketch) GetQuantileValue(q float64) (float64, bool) {
	if q < 0 || q > 1 || s.Count() == 0 {
		return 0, false
	}

	rank := q * (s.Count() - 1)
	negativeCount := s.negativeStore.TotalCount()

	switch {
	case rank < negativeCount:
		key := s.negativeStore.KeyAtRankDescending(rank, true)
		return -s.Value(key), true
	case rank < negativeCount+s.zeroCount:
		return 0, true
	default:
		key := s.positiveStore.KeyAtRank(rank - s.zeroCount - negativeCount, true)
		return s.Value(key), true
	}
}

// Merge folds other's state into s, leaving other unmodified. It fails
// with IncompatibleParametersError if the two sketches use different
// mappings (gammas).
func (s *DDSketch) Merge(other *DDSketch) error {
	if !s.IndexMapping.Equals(other.IndexMapping) {
		return incompatibleParameters("sketches must share the same index mapping to merge")
	}
	if other.Count() == 0 {
		return nil
	}
	if s.Count() == 0 {
		s.positiveStore.Copy(other.positiveStore)
		s.negativeStore.Copy(other.negativeStore)
		s.zeroCount = other.zeroCount
		s.summary = other.summary.Copy()
		return nil
	}

	s.positiveStore.Merge(other.positiveStore)
	s.negativeStore.Merge(other.negativeStore)
	s.zeroCount += other.zeroCount
	s.summary.MergeWith(other.summary)
	return nil
}

// Copy returns a deep, independent copy of s.
func (s *DDSketch) Copy() *DDSketch {
	positive := s.positiveStore.Clone()
	negative := s.negativeStore.Clone()
	positive.Copy(s.positiveStore)
	negative.Copy(s.negativeStore)
	return &DDSketch{
		IndexMapping:  s.IndexMapping,
		positiveStore: positive,
		negativeStore: negative,
		zeroCount:     s.zeroCount,
		summary:       s.summary.Copy(),
	}
}

// NumValues is the total weight ingested (Σ weights).
func (s *DDSketch) NumValues() float64 { return s.summary.Count() }

// Count is an alias for NumValues, matching the store/summary vocabulary.
func (s *DDSketch) Count() float64 { return s.summary.Count() }

// Sum is Σ value·weight, to floating-point precision.
func (s *DDSketch) Sum() float64 { return s.summary.Sum() }

// Avg is Sum()/NumValues(), or NaN if the sketch is empty.
func (s *DDSketch) Avg() float64 { return s.summary.Avg() }

// Min is the smallest value added, or +Inf if the sketch is empty.
func (s *DDSketch) Min() float64 { return s.summary.Min() }

// Max is the largest value added, or -Inf if the sketch is empty.
func (s *DDSketch) Max() float64 { return s.summary.Max() }

// RelativeAccuracy returns the α the sketch's mapping was built with.
func (s *DDSketch) RelativeAccuracy() float64 { return s.IndexMapping.RelativeAccuracy() }

// Histogram answers a cumulative count at each of a set of ascending
// value edges: for each edge e, Histogram reports how many ingested values
// are <= e. Non-negative edges share a single forward walk over the
// positive store; each negative edge walks the negative store on its own,
// starting from its largest key.
func (s *DDSketch) Histogram(edges []float64) map[float64]float64 {
	result := make(map[float64]float64, len(edges))
	if len(edges) == 0 {
		return result
	}

	negBins := s.negativeStore.Bins()
	zeroAndNeg := s.zeroCount
	for _, b := range negBins {
		zeroAndNeg += b.Count
	}

	posBins := s.positiveStore.Bins()
	cursor := 0
	cumulative := zeroAndNeg

	for _, e := range edges {
		if e < 0 {
			// Edges below zero only ever see the negative store; walk it
			// on its own simplified cumulative pass.
			result[e] = cumulativeNegativeCount(negBins, s.Key(-e))
			continue
		}
		if e == 0 {
			result[e] = zeroAndNeg
			continue
		}
		k := s.Key(e)
		for cursor < len(posBins) && posBins[cursor].Key <= k {
			cumulative += posBins[cursor].Count
			cursor++
		}
		result[e] = cumulative
	}
	return result
}

func cumulativeNegativeCount(bins []store.Bin, key int) float64 {
	var cumulative float64
	for i := len(bins) - 1; i >= 0; i-- {
		if bins[i].Key < key {
			break
		}
		cumulative += bins[i].Count
	}
	return cumulative
}
