// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package mapping

import "math"

// Coefficients of p(s) = A*s^3 + B*s^2 + C*s, the cubic polynomial on
// s in [0,1) that minimizes the sup-norm of |p(s) - log2(1+s)|.
const (
	cubicA = 6.0 / 35.0
	cubicB = -3.0 / 5.0
	cubicC = 10.0 / 7.0
)

// CubicallyInterpolatedMapping approximates LogarithmicMapping with a cubic
// polynomial fit to log2(1+s) on the mantissa, trading a little more
// arithmetic per Key call for a mapping that needs far fewer buckets than
// LinearlyInterpolatedMapping at the same relative accuracy.
type CubicallyInterpolatedMapping struct {
	base
}

func NewCubicallyInterpolatedMapping(relativeAccuracy float64) (*CubicallyInterpolatedMapping, error) {
	b, err := newBase(relativeAccuracy, 0)
	if err != nil {
		return nil, err
	}
	return &CubicallyInterpolatedMapping{b}, nil
}

func NewCubicallyInterpolatedMappingWithGamma(gamma, offset float64) (*CubicallyInterpolatedMapping, error) {
	b, err := newBaseWithGamma(gamma, offset)
	if err != nil {
		return nil, err
	}
	return &CubicallyInterpolatedMapping{b}, nil
}

// cubicLog approximates ln(value) as (exponent(value) + p(mantissa(value))) * ln(2).
func cubicLog(value float64) float64 {
	bits := math.Float64bits(value)
	e := float64(exponent(bits))
	s := significandPlusOne(bits) - 1
	p := ((cubicA*s+cubicB)*s+cubicC)*s
	return (e + p) * math.Ln2
}

// cubicInverseLog inverts cubicLog, taking x in base-2 units (cubicLog's
// result divided by ln(2)): the exponent is floor(x), and the mantissa s is
// the root of A*s^3+B*s^2+C*s-t = 0, where t = x - floor(x), found with
// Cardano's formula. math.Cbrt
// is used rather than math.Pow(.., 1.0/3) because it is defined, and
// correctly signed, for negative operands (and returns 0 for 0), which the
// discriminant here can be.
func cubicInverseLog(x float64) float64 {
	exp := math.Floor(x)
	t := x - exp
	d0 := cubicB*cubicB - 3*cubicA*cubicC
	d1 := 2*cubicB*cubicB*cubicB - 9*cubicA*cubicB*cubicC - 27*cubicA*cubicA*t
	p := math.Cbrt((d1 - math.Sqrt(d1*d1-4*d0*d0*d0)) / 2)
	s := -(cubicB+p+d0/p)/(3*cubicA) + 1
	return buildFloat64(int(exp), s)
}

func (m *CubicallyInterpolatedMapping) Key(value float64) int {
	return m.key(cubicLog(value))
}

// Value overrides the generic gamma^(key-offset) formula: since Key
// approximates ln via a cubic rather than the true logarithm, the value
// that truly sits at the midpoint of the bucket identified by key is
// recovered by inverting the same cubic, not by assuming an exact
// logarithmic bucket boundary.
func (m *CubicallyInterpolatedMapping) Value(key int) float64 {
	x := (float64(key) - m.offset) / m.multiplier / math.Ln2
	return cubicInverseLog(x) * (1 + m.relativeAccuracy)
}

func (m *CubicallyInterpolatedMapping) MinIndexableValue() float64 { return m.minPossible() }
func (m *CubicallyInterpolatedMapping) MaxIndexableValue() float64 { return m.maxPossible() }

func (m *CubicallyInterpolatedMapping) Equals(other IndexMapping) bool {
	o, ok := other.(*CubicallyInterpolatedMapping)
	return ok && m.equals(o.base)
}
