// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package mapping

import "math"

// LinearlyInterpolatedMapping approximates LogarithmicMapping by pulling
// the base-2 exponent straight out of the float64 bit pattern and linearly
// interpolating the mantissa, instead of calling math.Log. It needs more
// keys than LogarithmicMapping for the same accuracy, but Key is branch-free
// and call-free.
type LinearlyInterpolatedMapping struct {
	base
}

func NewLinearlyInterpolatedMapping(relativeAccuracy float64) (*LinearlyInterpolatedMapping, error) {
	b, err := newBase(relativeAccuracy, 0)
	if err != nil {
		return nil, err
	}
	return &LinearlyInterpolatedMapping{b}, nil
}

func NewLinearlyInterpolatedMappingWithGamma(gamma, offset float64) (*LinearlyInterpolatedMapping, error) {
	b, err := newBaseWithGamma(gamma, offset)
	if err != nil {
		return nil, err
	}
	return &LinearlyInterpolatedMapping{b}, nil
}

// approximateLog2 returns e + s where value = 2^e * (1+s'), s' in [0,1) and
// s is the linear interpolation 1+s' of the mantissa. It grows by ~1 per
// octave, so it is a monotonic affine-ish stand-in for log2(value).
func approximateLog2(value float64) float64 {
	bits := math.Float64bits(value)
	return float64(exponent(bits)) + significandPlusOne(bits)
}

func (m *LinearlyInterpolatedMapping) Key(value float64) int {
	// approximateLog2(value) * ln(2) approximates ln(value); multiplying by
	// ln(2) here rather than folding it into multiplier keeps Key's
	// constant-approximation independent of relativeAccuracy.
	return m.key(approximateLog2(value) * math.Ln2)
}

// linearInverseLog inverts approximateLog2: given y = e + s (s in [1,2)),
// it recovers e as floor(y-1) and rebuilds the float64 from (e, s).
func linearInverseLog(y float64) float64 {
	exp := math.Floor(y - 1)
	return buildFloat64(int(exp), y-exp)
}

// Value overrides the generic gamma^(key-offset) formula: since Key
// approximates ln via approximateLog2 rather than the true logarithm, the
// value that truly sits at the midpoint of the bucket identified by key is
// recovered by inverting approximateLog2, not by assuming an exact
// logarithmic bucket boundary.
func (m *LinearlyInterpolatedMapping) Value(key int) float64 {
	y := (float64(key) - m.offset) / m.multiplier / math.Ln2
	return linearInverseLog(y) * (1 + m.relativeAccuracy)
}

func (m *LinearlyInterpolatedMapping) MinIndexableValue() float64 { return m.minPossible() }
func (m *LinearlyInterpolatedMapping) MaxIndexableValue() float64 { return m.maxPossible() }

func (m *LinearlyInterpolatedMapping) Equals(other IndexMapping) bool {
	o, ok := other.(*LinearlyInterpolatedMapping)
	return ok && m.equals(o.base)
}
