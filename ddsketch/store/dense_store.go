// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package store

import "math/bits"

const (
	maxInt = 1<<(bits.UintSize-1) - 1
	minInt = -maxInt - 1
)

// denseStoreBase holds the state and the key-range-independent operations
// shared by DenseStore and its collapsing variants: the bin array, the
// offset between a key and its index in that array, the occupied key
// range, and the total count. Growth, centering, and collapsing are
// specialized per concrete store type and are not part of this base.
type denseStoreBase struct {
	bins      []float64
	offset    int
	minKey    int
	maxKey    int
	count     float64
	chunkSize int
}

func newDenseStoreBase(chunkSize int) denseStoreBase {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return denseStoreBase{minKey: maxInt, maxKey: minInt, chunkSize: chunkSize}
}

func (b *denseStoreBase) Length() int       { return len(b.bins) }
func (b *denseStoreBase) IsEmpty() bool     { return b.count == 0 }
func (b *denseStoreBase) TotalCount() float64 { return b.count }
func (b *denseStoreBase) MinKey() int       { return b.minKey }
func (b *denseStoreBase) MaxKey() int       { return b.maxKey }

func (b *denseStoreBase) Bins() []Bin {
	if b.count == 0 {
		return nil
	}
	out := make([]Bin, 0, b.maxKey-b.minKey+1)
	for k := b.minKey; k <= b.maxKey; k++ {
		if c := b.bins[k-b.offset]; c > 0 {
			out = append(out, Bin{Key: k, Count: c})
		}
	}
	return out
}

// keyAtRank walks the bins in ascending index order and returns the key of
// the first bin for which the running count exceeds rank (lower=true) or
// is at least rank+1 (lower=false). If the rank is beyond the store's
// total count, MaxKey is returned.
func (b *denseStoreBase) keyAtRank(rank float64, lower bool) int {
	running := 0.0
	for i, c := range b.bins {
		running += c
		if (lower && running > rank) || (!lower && running >= rank+1) {
			return i + b.offset
		}
	}
	return b.maxKey
}

// keyAtRankDescending is keyAtRank walked from the highest occupied bin
// down to the lowest.
func (b *denseStoreBase) keyAtRankDescending(rank float64, lower bool) int {
	running := 0.0
	for i := len(b.bins) - 1; i >= 0; i-- {
		running += b.bins[i]
		if (lower && running > rank) || (!lower && running >= rank+1) {
			return i + b.offset
		}
	}
	return b.minKey
}

// shiftBins rotates the backing array by shift positions, zero-filling the
// vacated end, and adjusts offset so that the same keys still map to the
// same counts. A positive shift moves bins to higher indices (freeing room
// at the low end); a negative shift moves them to lower indices.
func (b *denseStoreBase) shiftBins(shift int) {
	if shift == 0 {
		return
	}
	n := len(b.bins)
	shifted := make([]float64, n)
	if shift > 0 {
		copy(shifted[shift:], b.bins[:n-shift])
	} else {
		copy(shifted[:n+shift], b.bins[-shift:])
	}
	b.bins = shifted
	b.offset -= shift
}

// centerBins re-centers the occupied [newMinKey, newMaxKey] window within
// the (unresized) backing array, by computing and applying the shift that
// makes offset + length()/2 equal to the middle of the new range. This
// amortizes the cost of repeated one-sided growth.
func (b *denseStoreBase) centerBins(newMinKey, newMaxKey int) {
	middleKey := newMinKey + (newMaxKey-newMinKey+1)/2
	b.shiftBins(b.offset + b.Length()/2 - middleKey)
}

func (b *denseStoreBase) copyFieldsFrom(o *denseStoreBase) {
	b.bins = make([]float64, len(o.bins))
	copy(b.bins, o.bins)
	b.offset = o.offset
	b.minKey = o.minKey
	b.maxKey = o.maxKey
	b.count = o.count
	b.chunkSize = o.chunkSize
}

func ceilDiv(a, d int) int {
	return (a + d - 1) / d
}

func minOf(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func maxOf(x, y int) int {
	if x > y {
		return x
	}
	return y
}

// DenseStore is a dense, unbounded count store: its backing array grows in
// chunkSize-sized increments to cover whatever key range is added to it.
type DenseStore struct {
	denseStoreBase
}

// NewDenseStore returns an empty DenseStore that grows in DefaultChunkSize
// increments.
func NewDenseStore() *DenseStore {
	return &DenseStore{newDenseStoreBase(DefaultChunkSize)}
}

// NewDenseStoreWithChunkSize returns an empty DenseStore that grows in the
// given increment.
func NewDenseStoreWithChunkSize(chunkSize int) *DenseStore {
	return &DenseStore{newDenseStoreBase(chunkSize)}
}

func (s *DenseStore) Add(key int, weight float64) {
	idx := s.getIndex(key)
	s.bins[idx] += weight
	s.count += weight
}

func (s *DenseStore) getIndex(key int) int {
	if key < s.minKey || key > s.maxKey {
		s.extendRange(key, key)
	}
	return key - s.offset
}

func (s *DenseStore) getNewLength(newMinKey, newMaxKey int) int {
	desired := newMaxKey - newMinKey + 1
	return s.chunkSize * ceilDiv(desired, s.chunkSize)
}

func (s *DenseStore) extendRange(key, secondKey int) {
	newMinKey := minOf(minOf(key, secondKey), s.minKey)
	newMaxKey := maxOf(maxOf(key, secondKey), s.maxKey)

	switch {
	case s.Length() == 0:
		s.bins = make([]float64, s.getNewLength(newMinKey, newMaxKey))
		s.offset = newMinKey
		s.adjust(newMinKey, newMaxKey)
	case newMinKey >= s.minKey && newMaxKey < s.offset+s.Length():
		s.minKey = newMinKey
		s.maxKey = newMaxKey
	default:
		newLength := s.getNewLength(newMinKey, newMaxKey)
		if newLength > s.Length() {
			grown := make([]float64, newLength)
			copy(grown, s.bins)
			s.bins = grown
		}
		s.adjust(newMinKey, newMaxKey)
	}
}

func (s *DenseStore) adjust(newMinKey, newMaxKey int) {
	s.centerBins(newMinKey, newMaxKey)
	s.minKey = newMinKey
	s.maxKey = newMaxKey
}

func (s *DenseStore) KeyAtRank(rank float64, lower bool) int {
	return s.keyAtRank(rank, lower)
}

func (s *DenseStore) KeyAtRankDescending(rank float64, lower bool) int {
	return s.keyAtRankDescending(rank, lower)
}

func (s *DenseStore) Clone() Store {
	return NewDenseStoreWithChunkSize(s.chunkSize)
}

// IsCollapsed is always false: DenseStore grows to fit any key and never
// folds one into a boundary bin.
func (s *DenseStore) IsCollapsed() bool { return false }

func (s *DenseStore) Copy(other Store) {
	o, ok := other.(*DenseStore)
	if !ok {
		s.bins = nil
		s.offset = 0
		s.minKey, s.maxKey = maxInt, minInt
		s.count = 0
		for _, bin := range other.Bins() {
			s.Add(bin.Key, bin.Count)
		}
		return
	}
	s.copyFieldsFrom(&o.denseStoreBase)
}

func (s *DenseStore) Merge(other Store) {
	if other.TotalCount() == 0 {
		return
	}
	o, ok := other.(*DenseStore)
	if !ok {
		for _, bin := range other.Bins() {
			s.Add(bin.Key, bin.Count)
		}
		return
	}
	if s.count == 0 {
		s.Copy(o)
		return
	}
	if o.minKey < s.minKey || o.maxKey > s.maxKey {
		s.extendRange(o.minKey, o.maxKey)
	}
	for k := o.minKey; k <= o.maxKey; k++ {
		s.bins[k-s.offset] += o.bins[k-o.offset]
	}
	s.count += o.count
}
