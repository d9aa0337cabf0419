// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package store

// CollapsingHighestDenseStore mirrors CollapsingLowestDenseStore, folding
// the highest keys into the rightmost bin once the occupied range would
// exceed binLimit.
type CollapsingHighestDenseStore struct {
	denseStoreBase
	binLimit    int
	isCollapsed bool
}

func NewCollapsingHighestDenseStore(binLimit int) *CollapsingHighestDenseStore {
	return NewCollapsingHighestDenseStoreWithChunkSize(binLimit, DefaultChunkSize)
}

func NewCollapsingHighestDenseStoreWithChunkSize(binLimit, chunkSize int) *CollapsingHighestDenseStore {
	return &CollapsingHighestDenseStore{denseStoreBase: newDenseStoreBase(chunkSize), binLimit: binLimit}
}

func (s *CollapsingHighestDenseStore) Add(key int, weight float64) {
	idx := s.getIndex(key)
	s.bins[idx] += weight
	s.count += weight
}

func (s *CollapsingHighestDenseStore) getIndex(key int) int {
	if key > s.maxKey {
		if s.isCollapsed {
			return s.Length() - 1
		}
		s.extendRange(key, key)
		if s.isCollapsed {
			return s.Length() - 1
		}
	} else if key < s.minKey {
		s.extendRange(key, key)
	}
	return key - s.offset
}

func (s *CollapsingHighestDenseStore) getNewLength(newMinKey, newMaxKey int) int {
	desired := newMaxKey - newMinKey + 1
	return minOf(s.chunkSize*ceilDiv(desired, s.chunkSize), s.binLimit)
}

func (s *CollapsingHighestDenseStore) extendRange(key, secondKey int) {
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

func (s *CollapsingHighestDenseStore) adjust(newMinKey, newMaxKey int) {
	if newMaxKey-newMinKey+1 > s.Length() {
		newMaxKey = newMinKey + s.Length() - 1

		if newMaxKey <= s.minKey {
			// Every existing count collapses into the single rightmost bin.
			s.offset = newMinKey
			s.maxKey = newMaxKey
			for i := range s.bins {
				s.bins[i] = 0
			}
			s.bins[len(s.bins)-1] = s.count
		} else {
			shift := s.offset - newMinKey
			if shift > 0 {
				collapseStart := newMaxKey - s.offset + 1
				collapseEnd := s.maxKey - s.offset + 1
				var collapsed float64
				for i := collapseStart; i < collapseEnd; i++ {
					collapsed += s.bins[i]
					s.bins[i] = 0
				}
				s.bins[collapseStart-1] += collapsed
				s.maxKey = newMaxKey
				s.shiftBins(shift)
			} else {
				s.maxKey = newMaxKey
				s.shiftBins(shift)
			}
		}
		s.minKey = newMinKey
		s.isCollapsed = true
	} else {
		s.centerBins(newMinKey, newMaxKey)
		s.minKey = newMinKey
		s.maxKey = newMaxKey
	}
}

func (s *CollapsingHighestDenseStore) KeyAtRank(rank float64, lower bool) int {
	return s.keyAtRank(rank, lower)
}

func (s *CollapsingHighestDenseStore) KeyAtRankDescending(rank float64, lower bool) int {
	return s.keyAtRankDescending(rank, lower)
}

func (s *CollapsingHighestDenseStore) Clone() Store {
	return NewCollapsingHighestDenseStoreWithChunkSize(s.binLimit, s.chunkSize)
}

// IsCollapsed reports whether the largest keys have ever been folded into
// the rightmost bin. Once true, it stays true permanently.
func (s *CollapsingHighestDenseStore) IsCollapsed() bool { return s.isCollapsed }

func (s *CollapsingHighestDenseStore) Copy(other Store) {
	o, ok := other.(*CollapsingHighestDenseStore)
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

func (s *CollapsingHighestDenseStore) Merge(other Store) {
	if other.TotalCount() == 0 {
		return
	}
	o, ok := other.(*CollapsingHighestDenseStore)
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

	collapseEnd := o.maxKey - o.offset + 1
	collapseStart := maxOf(s.maxKey+1, o.minKey) - o.offset
	if collapseEnd > collapseStart {
		var collapsed float64
		for i := collapseStart; i < collapseEnd; i++ {
			collapsed += o.bins[i]
		}
		s.bins[len(s.bins)-1] += collapsed
	} else {
		collapseStart = collapseEnd
	}

	for k := o.minKey; k < collapseStart+o.offset; k++ {
		s.bins[k-s.offset] += o.bins[k-o.offset]
	}
	s.count += o.count
}
