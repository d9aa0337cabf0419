// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package mapping

import "math"

// LogarithmicMapping is the memory-optimal IndexMapping: for a given
// relative accuracy it needs the fewest keys to cover a value range,
// because it buckets values by their exact natural logarithm. The cost is
// one math.Log call per Key.
type LogarithmicMapping struct {
	base
}

// NewLogarithmicMapping returns a LogarithmicMapping with offset 0.
func NewLogarithmicMapping(relativeAccuracy float64) (*LogarithmicMapping, error) {
	b, err := newBase(relativeAccuracy, 0)
	if err != nil {
		return nil, err
	}
	return &LogarithmicMapping{b}, nil
}

// NewLogarithmicMappingWithGamma reconstructs a LogarithmicMapping from its
// gamma and offset, as recovered from an encoded sketch.
func NewLogarithmicMappingWithGamma(gamma, offset float64) (*LogarithmicMapping, error) {
	b, err := newBaseWithGamma(gamma, offset)
	if err != nil {
		return nil, err
	}
	return &LogarithmicMapping{b}, nil
}

func (m *LogarithmicMapping) Key(value float64) int {
	return m.key(math.Log(value))
}

func (m *LogarithmicMapping) Value(key int) float64 {
	return m.value(key)
}

func (m *LogarithmicMapping) MinIndexableValue() float64 { return m.minPossible() }
func (m *LogarithmicMapping) MaxIndexableValue() float64 { return m.maxPossible() }

func (m *LogarithmicMapping) Equals(other IndexMapping) bool {
	o, ok := other.(*LogarithmicMapping)
	return ok && m.equals(o.base)
}
