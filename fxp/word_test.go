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

import "testing"

func TestWordLaneBitLayout(t *testing.T) {
	// Element i occupies bits [i*16+15 : i*16], element 0 in the lowest
	// 16 bits of the first uint64.
	var w Word
	w.SetLane(0, Elem(-1)) // 0xFFFF
	if w[0] != 0xFFFF {
		t.Fatalf("lane 0 bits = %#x, want 0xFFFF", w[0])
	}
	w = Word{}
	w.SetLane(3, 0x1234)
	if w[0] != 0x1234<<48 {
		t.Fatalf("lane 3 bits = %#x, want %#x", w[0], uint64(0x1234)<<48)
	}
	w = Word{}
	w.SetLane(4, 0x7FFF)
	if w[1] != 0x7FFF {
		t.Fatalf("lane 4 bits = %#x, want 0x7FFF", w[1])
	}
	w = Word{}
	w.SetLane(15, Elem(-32768)) // 0x8000 in the top 16 bits
	if w[3] != 0x8000<<48 {
		t.Fatalf("lane 15 bits = %#x, want %#x", w[3], uint64(0x8000)<<48)
	}
}

func TestWordSetLaneOverwrites(t *testing.T) {
	var w Word
	for i := 0; i < WordLanes; i++ {
		w.SetLane(i, Elem(i*0x111))
	}
	w.SetLane(5, Elem(-2))
	for i := 0; i < WordLanes; i++ {
		want := Elem(i * 0x111)
		if i == 5 {
			want = -2
		}
		if got := w.Lane(i); got != want {
			t.Errorf("lane %d = %d, want %d", i, got, want)
		}
	}
}

func TestPackUnpack16(t *testing.T) {
	src := make([]Elem, WordLanes)
	for i := range src {
		src[i] = Elem(-300 + i*77)
	}
	w := Pack16(src)
	dst := make([]Elem, WordLanes)
	w.Unpack16(dst)
	for i := range src {
		if dst[i] != src[i] {
			t.Errorf("lane %d = %d, want %d", i, dst[i], src[i])
		}
	}
}

func TestPackElemsFlatIndexing(t *testing.T) {
	// 37 elements span three words; trailing lanes of the last word are zero.
	src := make([]Elem, 37)
	for i := range src {
		src[i] = Elem(i - 18)
	}
	words := PackElems(src)
	if len(words) != 3 {
		t.Fatalf("len(words) = %d, want 3", len(words))
	}
	for i := range src {
		if got := LoadElem(words, i); got != src[i] {
			t.Errorf("LoadElem(%d) = %d, want %d", i, got, src[i])
		}
	}
	for lane := 37 & 15; lane < WordLanes; lane++ {
		if got := words[2].Lane(lane); got != 0 {
			t.Errorf("trailing lane %d = %d, want 0", lane, got)
		}
	}
	StoreElem(words, 20, 999)
	if got := LoadElem(words, 20); got != 999 {
		t.Errorf("StoreElem round trip = %d, want 999", got)
	}
	if got := LoadElem(words, 19); got != src[19] {
		t.Errorf("neighbour disturbed: %d, want %d", got, src[19])
	}
}

func TestWordsFor(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 0}, {1, 1}, {16, 1}, {17, 2}, {256, 16},
	}
	for _, tt := range tests {
		if got := WordsFor(tt.n); got != tt.want {
			t.Errorf("WordsFor(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
