// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

// Package mapping implements the key mapping component of a DDSketch: a
// bijection-ish map between positive real values and integer bucket keys
// with a guaranteed relative error bound.
package mapping

import (
	"errors"
	"math"
)

// minNormalFloat64 is 2^-1022, the smallest positive normal float64.
const minNormalFloat64 = 2.2250738585072014e-308

// IndexMapping buckets positive real values into integer keys. For every
// value v in (MinIndexableValue(), MaxIndexableValue()):
//
//	|Value(Key(v)) - v| / v <= RelativeAccuracy()
type IndexMapping interface {
	// Key returns the bucket key for value. value must be positive and
	// within (MinIndexableValue(), MaxIndexableValue()); callers are
	// expected to have filtered the input beforehand.
	Key(value float64) int
	// Value returns the representative value of the bucket identified by key.
	Value(key int) float64
	Gamma() float64
	RelativeAccuracy() float64
	MinIndexableValue() float64
	MaxIndexableValue() float64
	// Equals reports whether two mappings assign the same key to the same
	// values, which is the precondition for merging the stores built on top
	// of them.
	Equals(other IndexMapping) bool
}

// base holds the state shared by all three mapping variants: the accuracy
// target, the geometric base gamma = (1+alpha)/(1-alpha) and its natural
// log, the multiplier 1/ln(gamma), and the offset o that lets two mappings
// sharing the same gamma place key 0 at a different value.
type base struct {
	relativeAccuracy float64
	gamma            float64
	gammaLn          float64
	multiplier       float64
	offset           float64
}

func newBase(relativeAccuracy, offset float64) (base, error) {
	if relativeAccuracy <= 0 || relativeAccuracy >= 1 {
		return base{}, errors.New("mapping: relative accuracy must be between 0 and 1")
	}
	gamma := (1 + relativeAccuracy) / (1 - relativeAccuracy)
	gammaLn := math.Log(gamma)
	return base{
		relativeAccuracy: relativeAccuracy,
		gamma:            gamma,
		gammaLn:          gammaLn,
		multiplier:       1 / gammaLn,
		offset:           offset,
	}, nil
}

func newBaseWithGamma(gamma, offset float64) (base, error) {
	if gamma <= 1 {
		return base{}, errors.New("mapping: gamma must be greater than 1")
	}
	gammaLn := math.Log(gamma)
	return base{
		relativeAccuracy: (gamma - 1) / (gamma + 1),
		gamma:            gamma,
		gammaLn:          gammaLn,
		multiplier:       1 / gammaLn,
		offset:           offset,
	}, nil
}

// key rounds f*multiplier (f being some approximation of ln(value)) up to
// the nearest integer and shifts it by the offset. Ceiling, rather than
// truncation, is what makes Value the inverse of Key at the bucket's
// midpoint instead of its lower edge.
func (b base) key(f float64) int {
	return int(math.Ceil(f*b.multiplier) + b.offset)
}

// value is gamma^(key-offset) * 2/(1+gamma), evaluated in log space and
// squared from half the exponent, so that neither a large integer power of
// gamma nor an intermediate result near the float64 overflow threshold
// costs accuracy or overflows.
func (b base) value(key int) float64 {
	half := math.Exp(((float64(key)-b.offset)*b.gammaLn + math.Log(2/(1+b.gamma))) / 2)
	return half * half
}

func (b base) Gamma() float64            { return b.gamma }
func (b base) RelativeAccuracy() float64 { return b.relativeAccuracy }

func (b base) minPossible() float64 { return minNormalFloat64 * b.gamma }
func (b base) maxPossible() float64 { return math.MaxFloat64 / b.gamma }

func (b base) equals(o base) bool {
	const tol = 1e-12
	return withinTolerance(b.gamma, o.gamma, tol) && withinTolerance(b.offset, o.offset, tol)
}

func withinTolerance(x, y, tolerance float64) bool {
	return math.Abs(x-y) <= tolerance
}
