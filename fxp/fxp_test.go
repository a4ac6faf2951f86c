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

import (
	"math"
	"testing"
)

func TestFromFloat32(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want Elem
	}{
		{"zero", 0, 0},
		{"one", 1.0, 256},
		{"minus one", -1.0, -256},
		{"half lsb rounds to even down", 1.0 / 512.0, 0},
		{"three half lsb rounds to even up", 3.0 / 512.0, 2},
		{"negative half lsb rounds to even", -1.0 / 512.0, 0},
		{"negative three half lsb", -3.0 / 512.0, -2},
		{"max representable", 127.99609375, math.MaxInt16},
		{"saturate high", 200.0, math.MaxInt16},
		{"saturate low", -200.0, math.MinInt16},
		{"tenth", 0.1, 26}, // 25.6 rounds to 26
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromFloat32(tt.in); got != tt.want {
				t.Errorf("FromFloat32(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestNarrow(t *testing.T) {
	tests := []struct {
		name string
		in   Acc
		want Elem
	}{
		{"zero", 0, 0},
		{"exact one", 1 << 16, 256},
		{"round down", 0x7F, 0},
		{"round up", 0x81, 1},
		{"half to even stays", 0x80, 0},       // 0.5 lsb, quotient even
		{"half to even bumps", 0x180, 2},      // 1.5 lsb, quotient odd
		{"negative half to even", -0x80, 0},   // -0.5 lsb rounds to 0
		{"negative 1.5 lsb", -0x180, -2},      // -1.5 lsb rounds to -2
		{"negative tiny", -1, 0},              // -2^-16 rounds to 0
		{"saturate high", math.MaxInt32, math.MaxInt16},
		{"saturate low", math.MinInt32, math.MinInt16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Narrow(tt.in); got != tt.want {
				t.Errorf("Narrow(%#x) = %d, want %d", int64(tt.in), got, tt.want)
			}
		})
	}
}

func TestMul(t *testing.T) {
	one := One
	tests := []struct {
		name string
		a, b Elem
		want Elem
	}{
		{"one times one", one, one, one},
		{"sign", -one, one, -one},
		{"halves", one / 2, one / 2, one / 4},
		{"lsb times lsb rounds away", 1, 1, 0}, // 2^-16 narrows to 0
		{"saturates", math.MaxInt16, math.MaxInt16, math.MaxInt16},
		{"negative saturates", math.MinInt16, math.MaxInt16, math.MinInt16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mul(tt.a, tt.b); got != tt.want {
				t.Errorf("Mul(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMacSaturates(t *testing.T) {
	acc := Acc(math.MaxInt32 - 10)
	got := Mac(acc, math.MaxInt16, math.MaxInt16)
	if got != math.MaxInt32 {
		t.Errorf("Mac high = %d, want saturation at %d", got, int32(math.MaxInt32))
	}
	acc = Acc(math.MinInt32 + 10)
	got = Mac(acc, math.MinInt16, math.MaxInt16)
	if got != math.MinInt32 {
		t.Errorf("Mac low = %d, want saturation at %d", got, int32(math.MinInt32))
	}
	// In-range MAC is exact.
	if got := Mac(1<<16, One, One); got != 2<<16 {
		t.Errorf("Mac(1.0, 1.0, 1.0) = %#x, want %#x", int32(got), 2<<16)
	}
}

func TestAffine(t *testing.T) {
	// Identity affine reduces to Narrow.
	for _, acc := range []Acc{0, 1 << 16, -3 << 14, 0x180, -0x180, 12345678} {
		if got, want := Affine(acc, One, 0), Narrow(acc); got != want {
			t.Errorf("Affine(%d, 1, 0) = %d, want Narrow = %d", acc, got, want)
		}
	}
	// Bias shifts by the encoded amount: 1.0 * 1.0 + 0.5 = 1.5.
	if got := Affine(1<<16, One, One/2); got != One+One/2 {
		t.Errorf("Affine(1.0, 1.0, 0.5) = %d, want %d", got, One+One/2)
	}
	// Saturates instead of wrapping.
	if got := Affine(math.MaxInt32, math.MaxInt16, 0); got != math.MaxInt16 {
		t.Errorf("Affine overflow = %d, want %d", got, math.MaxInt16)
	}
}

func TestActivate(t *testing.T) {
	neg := FromFloat32(-2.0)
	pos := FromFloat32(3.5)
	tests := []struct {
		name string
		x    Elem
		mode Activation
		want Elem
	}{
		{"linear passes negative", neg, Linear, neg},
		{"linear passes positive", pos, Linear, pos},
		{"relu clamps negative", neg, ReLU, 0},
		{"relu passes positive", pos, ReLU, pos},
		{"leaky passes positive", pos, Leaky, pos},
		{"leaky zero", 0, Leaky, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Activate(tt.x, tt.mode); got != tt.want {
				t.Errorf("Activate(%d, %d) = %d, want %d", tt.x, tt.mode, got, tt.want)
			}
		})
	}
}

func TestActivateLeakyShiftContract(t *testing.T) {
	// Negative inputs must follow (x*13)>>7 in Q16.16, narrowed — not a
	// multiplication by 0.1.
	for x := Elem(math.MinInt16); x < 0; x += 97 {
		t13 := (int32(Widen(x)) * 13) >> 7
		want := Narrow(Acc(t13))
		if got := Activate(x, Leaky); got != want {
			t.Fatalf("Activate(%d, Leaky) = %d, want %d", x, got, want)
		}
	}
	// Spot check: -1.0 * 13/128 = -0.1015625 exactly representable? -26/256.
	if got := Activate(-One, Leaky); got != -26 {
		t.Errorf("Activate(-1.0, Leaky) = %d, want -26", got)
	}
}
