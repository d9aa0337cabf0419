// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package store

// CollapsingLowestDenseStore is a dense store with a hard cap on the number
// of bins. Once the occupied key range would need more than binLimit bins,
// the lowest keys are permanently folded into the leftmost bin, trading
// relative-accuracy on the smallest values for a bounded memory footprint.
type CollapsingLowestDenseStore struct {
	denseStoreBase
	binLimit    int
	isCollapsed bool
}

func NewCollapsingLowestDenseStore(binLimit int) *CollapsingLowestDenseStore {
	return NewCollapsingLowestDenseStoreWithChunkSize(binLimit, DefaultChunkSize)
}

func NewCollapsingLowestDenseStoreWithChunkSize(binLimit, chunkSize int) *CollapsingLowestDenseStore {
	return &CollapsingLowestDenseStore{denseStoreBase: newDenseStoreBase(chunkSize), binLimit: binLimit}
}

func (s *CollapsingLowestDenseStore) Add(key int, weight float64) {
	idx := s.getIndex(key)
	s.bins[idx] += weight
	s.count += weight
}

func (s *CollapsingLowestDenseStore) getIndex(key int) int {
	if key < s.minKey {
		if s.isCollapsed {
			return 0
		}
		s.extendRange(key, key)
		if s.isCollapsed {
			return 0
		}
	} else if key > s.maxKey {
		s.extendRange(key, key)
	}
	return key - s.offset
}

func (s *CollapsingLowestDenseStore) getNewLength(newMinKey, newMaxKey int) int {
	desired := newMaxKey - newMinKey + 1
	return minOf(s.chunkSize*ceilDiv(desired, s.chunkSize), s.binLimit)
}

func (s *CollapsingLowestDenseStore) extendRange(key, secondKey int) {
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

func (s *CollapsingLowestDenseStore) adjust(newMinKey, newMaxKey int) {
	if newMaxKey-newMinKey+1 > s.Length() {
		newMinKey = newMaxKey - s.Length() + 1

		if newMinKey >= s.maxKey {
			// Every existing count collapses into the single leftmost bin.
			s.offset = newMinKey
			s.minKey = newMinKey
			for i := range s.bins {
				s.bins[i] = 0
			}
			s.bins[0] = s.count
		} else {
			shift := s.offset - newMinKey
			if shift < 0 {
				collapseStart := s.minKey - s.offset
				collapseEnd := newMinKey - s.offset
				var collapsed float64
				for i := collapseStart; i < collapseEnd; i++ {
					collapsed += s.bins[i]
					s.bins[i] = 0
				}
				s.bins[collapseEnd] += collapsed
				s.minKey = newMinKey
				s.shiftBins(shift)
			} else {
				s.minKey = newMinKey
				s.shiftBins(shift)
			}
		}
		s.maxKey = newMaxKey
		s.isCollapsed = true
	} else {
		s.centerBins(newMinKey, newMaxKey)
		s.minKey = newMinKey
		s.maxKey = newMaxKey
	}
}

func (s *CollapsingLowestDenseStore) KeyAtRank(rank float64, lower bool) int {
	return s.keyAtRank(rank, lower)
}

func (s *CollapsingLowestDenseStore) KeyAtRankDescending(rank float64, lower bool) int {
	return s.keyAtRankDescending(rank, lower)
}

func (s *CollapsingLowestDenseStore) Clone() Store {
	return NewCollapsingLowestDenseStoreWithChunkSize(s.binLimit, s.chunkSize)
}

// IsCollapsed reports whether the smallest keys have ever been folded into
// the leftmost bin. Once true, it stays true permanently.
func (s *CollapsingLowestDenseStore) IsCollapsed() bool { return s.isCollapsed }

func (s *CollapsingLowestDenseStore) Copy(other Store) {
	o, ok := other.(*CollapsingLowestDenseStore)
	if !ok {
		s.bins = nil
		s.offset = 0
		s.minKey, s.maxKey = maxInt, minInt
		s.count = 0
		s.isCollapsed = false
		for _, bin := range other.Bins() {
			s.Add(bin.Key, bin.Count)
		}
		return
	}
	s.copyFieldsFrom(&o.denseStoreBase)
	s.binLimit = o.binLimit
	s.isCollapsed = o.isCollapsed
}

func (s *CollapsingLowestDenseStore) Merge(other Store) {
	if other.TotalCount() == 0 {
		return
	}
	o, ok := other.(*CollapsingLowestDenseStore)
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

	collapseStart := o.minKey - o.offset
	collapseEnd := minOf(s.minKey, o.maxKey+1) - o.offset
	if collapseEnd > collapseStart {
		var collapsed float64
		for i := collapseStart; i < collapseEnd; i++ {
			collapsed += o.bins[i]
		}
		s.bins[0] += collapsed
	} else {
		collapseEnd = collapseStart
	}

	for k := collapseEnd + o.offset; k <= o.maxKey; k++ {
		s.bins[k-s.offset] += o.bins[k-o.offset]
	}
	s.count += o.count
}
