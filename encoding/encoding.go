// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2021 Datadog, Inc.

// Package encoding provides the primitive byte codecs used to serialize a
// sketch's public fields: unsigned and signed varints (LEB128 capped at 9
// bytes, with zigzag for the signed case), a fixed-width little-endian
// float64, and a variable-width
// float64 that favors compactness for "round" values. None of these
// formats are tied to a particular wire envelope; callers compose them.
package encoding

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"math/bits"
)

// errVarint32Overflow is returned by DecodeVarint32 when the decoded value
// does not fit in an int32.
var errVarint32Overflow = errors.New("encoding: varint overflows int32")

// maxVarLen64 is the longest encoding of a 64-bit varint: eight 7-bit
// groups followed by a ninth byte that holds the remaining 8 bits.
const maxVarLen64 = 9

// EncodeUvarint64 appends v to *b using unsigned LEB128: 7 bits of value
// per byte, continuation indicated by the high bit. The encoding is capped
// at maxVarLen64 bytes: a ninth byte, when reached, carries the top 8 bits
// and no continuation flag.
func EncodeUvarint64(b *[]byte, v uint64) {
	for i := 0; i < maxVarLen64-1 && v >= 0x80; i++ {
		*b = append(*b, byte(v)|0x80)
		v >>= 7
	}
	*b = append(*b, byte(v))
}

// Uvarint64Size is len(encoded) without actually encoding v.
func Uvarint64Size(v uint64) int {
	if v == 0 {
		return 1
	}
	return min((bits.Len64(v)+6)/7, maxVarLen64)
}

// DecodeUvarint64 reads an unsigned LEB128 varint from the front of *b,
// advancing *b past the bytes consumed. It returns io.EOF if *b is
// exhausted before a terminating byte is seen.
func DecodeUvarint64(b *[]byte) (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= len(*b) {
			return 0, io.EOF
		}
		c := (*b)[i]
		if c < 0x80 || i == maxVarLen64-1 {
			v |= uint64(c) << shift
			*b = (*b)[i+1:]
			return v, nil
		}
		v |= uint64(c&0x7F) << shift
		shift += 7
	}
}

// zigzagEncode maps a signed value to an unsigned one so that small
// magnitudes (positive or negative) both encode compactly: 0,-1,1,-2,2,...
// map to 0,1,2,3,4,...
func zigzagEncode(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

func zigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// EncodeVarint64 appends v to *b as a zigzag-encoded LEB128 varint.
func EncodeVarint64(b *[]byte, v int64) {
	EncodeUvarint64(b, zigzagEncode(v))
}

// Varint64Size is len(encoded) without actually encoding v.
func Varint64Size(v int64) int {
	return Uvarint64Size(zigzagEncode(v))
}

// DecodeVarint64 reads a zigzag-encoded LEB128 varint from the front of
// *b, advancing *b past the bytes consumed.
func DecodeVarint64(b *[]byte) (int64, error) {
	uv, err := DecodeUvarint64(b)
	if err != nil {
		return 0, err
	}
	return zigzagDecode(uv), nil
}

// DecodeVarint32 is DecodeVarint64 with a range check against int32,
// returning errVarint32Overflow if the decoded value doesn't fit.
func DecodeVarint32(b *[]byte) (int32, error) {
	v, err := DecodeVarint64(b)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, errVarint32Overflow
	}
	return int32(v), nil
}

// EncodeFloat64LE appends v to *b as 8 bytes, IEEE-754 bits in
// little-endian byte order.
func EncodeFloat64LE(b *[]byte, v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	*b = append(*b, buf[:]...)
}

// DecodeFloat64LE reads 8 little-endian bytes from the front of *b,
// advancing *b past them.
func DecodeFloat64LE(b *[]byte) (float64, error) {
	if len(*b) < 8 {
		return 0, io.EOF
	}
	bits := binary.LittleEndian.Uint64((*b)[:8])
	*b = (*b)[8:]
	return math.Float64frombits(bits), nil
}

// EncodeVarfloat64 appends v to *b compactly: the IEEE-754 bit pattern is
// reversed bit-for-bit before being written as an unsigned LEB128 varint.
// Reversal moves a float's low-order (typically zero, for round numbers)
// mantissa bits into the varint's high-order, typically-dropped position,
// so integers and simple fractions encode in far fewer bytes than their
// raw 8-byte representation.
func EncodeVarfloat64(b *[]byte, v float64) {
	EncodeUvarint64(b, bits.Reverse64(math.Float64bits(v)))
}

// Varfloat64Size is len(encoded) without actually encoding v.
func Varfloat64Size(v float64) int {
	return Uvarint64Size(bits.Reverse64(math.Float64bits(v)))
}

// DecodeVarfloat64 is the inverse of EncodeVarfloat64.
func DecodeVarfloat64(b *[]byte) (float64, error) {
	reversed, err := DecodeUvarint64(b)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits.Reverse64(reversed)), nil
}
