// Copyright 2026 ObjectDetectionZCU102 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fxp

import "math"

// Elem is a Q8.8 signed fixed-point value: 8 integer bits, 8 fractional
// bits. Range is [-128, 127.99609375] with a resolution of 2^-8.
type Elem int16

// Acc is a Q16.16 signed fixed-point accumulator: 16 integer bits,
// 16 fractional bits. It is wide enough to hold the product of two Elem
// values exactly.
type Acc int32

const (
	// ElemFracBits is the number of fractional bits in an Elem.
	ElemFracBits = 8

	// AccFracBits is the number of fractional bits in an Acc.
	AccFracBits = 16

	// One is the Elem encoding of 1.0.
	One Elem = 1 << ElemFracBits

	maxElem = math.MaxInt16
	minElem = math.MinInt16
	maxAcc  = math.MaxInt32
	minAcc  = math.MinInt32
)

// Activation selects the non-linearity applied after the fused affine.
type Activation int

// Activation modes. The numeric values are part of the engine's parameter
// interface: callers configure the layer with the raw integer.
const (
	Linear Activation = -1 // pass through
	ReLU   Activation = 0  // clamp negatives to zero
	Leaky  Activation = 1  // multiply negatives by 13/128
)

// FromFloat32 encodes f as Q8.8 with round-to-nearest-even and saturation.
func FromFloat32(f float32) Elem {
	r := math.RoundToEven(float64(f) * (1 << ElemFracBits))
	if r > maxElem {
		return maxElem
	}
	if r < minElem {
		return minElem
	}
	return Elem(r)
}

// Float32 decodes e to its floating-point value.
func (e Elem) Float32() float32 {
	return float32(e) / (1 << ElemFracBits)
}

// Widen converts a Q8.8 value to Q16.16 exactly.
func Widen(e Elem) Acc {
	return Acc(int32(e) << (AccFracBits - ElemFracBits))
}

// Narrow converts x from Q16.16 to Q8.8 with round-to-nearest-even and
// saturation. Eight fractional bits are discarded.
func Narrow(x Acc) Elem {
	return roundShift(int64(x), AccFracBits-ElemFracBits)
}

// Mul returns a*b widened to Q16.16 then narrowed back to Q8.8 with
// round-to-nearest-even and saturation. The intermediate product is exact.
func Mul(a, b Elem) Elem {
	return Narrow(Acc(int32(a) * int32(b)))
}

// Mac returns acc + a*b with the product widened into Q16.16 and the
// addition saturating at the Q16.16 range.
func Mac(acc Acc, a, b Elem) Acc {
	sum := int64(acc) + int64(int32(a)*int32(b))
	if sum > maxAcc {
		return maxAcc
	}
	if sum < minAcc {
		return minAcc
	}
	return Acc(sum)
}

// Affine returns narrow(acc*scale + bias) as a single rounding step.
//
// The product acc*scale is formed exactly in Q24.24, bias is aligned to the
// same format, and the sum is narrowed to Q8.8 with round-to-nearest-even
// and saturation. Rounding once keeps the engine and the reference model
// bit-identical regardless of how the accumulator was summed.
func Affine(acc Acc, scale, bias Elem) Elem {
	p := int64(acc)*int64(scale) + int64(bias)<<AccFracBits
	return roundShift(p, AccFracBits)
}

// Activate applies the selected non-linearity to x.
//
// Leaky multiplies negative inputs by approximately 0.1, computed as
// (x*13)>>7 in the Q16.16 domain and narrowed. The shifted form is the
// contract: it matches the accelerator bit for bit, and 13/128 = 0.1015625
// is the value actually applied, not 0.1.
func Activate(x Elem, mode Activation) Elem {
	if mode == Linear || x >= 0 {
		return x
	}
	if mode == Leaky {
		t := int32(Widen(x))
		t = (t * 13) >> 7
		return Narrow(Acc(t))
	}
	return 0
}

// roundShift shifts v right by n bits with round-to-nearest-even on the
// discarded bits, then saturates to the Elem range.
func roundShift(v int64, n uint) Elem {
	q := v >> n
	r := v & (1<<n - 1)
	half := int64(1) << (n - 1)
	if r > half || (r == half && q&1 != 0) {
		q++
	}
	if q > maxElem {
		return maxElem
	}
	if q < minElem {
		return minElem
	}
	return Elem(q)
}
