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

package conv

import "github.com/LittleKorino/ObjectDetectionZCU102/fxp"

// stagingWords bounds one staged burst: the largest run is a weight block
// of TileIC*KMax*KMax elements, which can straddle ten words when it
// starts mid-word.
const stagingWords = (15 + TileIC*KMax*KMax + 15) / fxp.WordLanes

// fetchUnit is the first pipeline stage. Per (row, col, IC) tile it fills
// the input cache from the backing store once, then for every OC tile it
// fills the weight cache and streams both caches as packed words.
type fetchUnit struct {
	// inputCache holds the receptive field of one output tile for TileIC
	// channels. Live across all OC tiles of one IC tile.
	inputCache [TileIC][CacheH][CacheW]fxp.Elem

	// weightCache holds one OC tile's kernels for the current IC tile.
	weightCache [TileOC][TileIC][KMax][KMax]fxp.Elem

	// staging receives burst reads before elements are scattered into the
	// caches.
	staging [stagingWords]fxp.Word
}

func (f *fetchUnit) run(s *schedule, input, weights []fxp.Word, inStream, wtStream chan<- fxp.Word) {
	for tr := 0; tr < s.rowTiles; tr++ {
		for tc := 0; tc < s.colTiles; tc++ {
			g := s.geom(tr, tc)
			for ti := 0; ti < s.icTiles; ti++ {
				f.loadInput(s, input, g, ti)
				for to := 0; to < s.ocTiles; to++ {
					f.loadWeights(s, weights, ti, to)
					f.streamWeights(s, wtStream)
					f.streamInput(s, g, inStream)
				}
			}
		}
	}
	close(wtStream)
	close(inStream)
}

// stage burst-reads the words covering elements [start, start+count) into
// the staging buffer and returns the slot offset of start within it.
func (f *fetchUnit) stage(store []fxp.Word, start, count int) int {
	first := start >> 4
	last := (start + count - 1) >> 4
	copy(f.staging[:last-first+1], store[first:last+1])
	return start & 15
}

// staged returns the element at position off of the staging buffer; element
// j of the most recent stage call is at the offset it returned plus j.
func (f *fetchUnit) staged(off int) fxp.Elem {
	return f.staging[off>>4].Lane(off & 15)
}

// loadInput fills the input cache for IC tile ti. Every cache row is
// zeroed first so padding, out-of-bounds rows and channels beyond IC all
// read as zero; then the valid column range of each in-bounds row is
// burst-read and scattered.
func (f *fetchUnit) loadInput(s *schedule, input []fxp.Word, g tileGeom, ti int) {
	icBase := ti * s.tileIC
	for ic := 0; ic < s.tileIC; ic++ {
		gic := icBase + ic
		icOK := gic < s.p.InChannels
		for i := 0; i < g.inH; i++ {
			row := f.inputCache[ic][i][:g.inW]
			for j := range row {
				row[j] = 0
			}
			r := g.hBase + i
			if !icOK || r < 0 || r >= s.p.Height {
				continue
			}
			cLo := max(0, -g.wBase)
			cHi := min(g.inW, s.p.Width-g.wBase)
			if cLo >= cHi {
				continue
			}
			start := (gic*s.p.Height+r)*s.p.Width + g.wBase + cLo
			off := f.stage(input, start, cHi-cLo)
			for j := 0; j < cHi-cLo; j++ {
				row[cLo+j] = f.staged(off + j)
			}
		}
	}
}

// loadWeights fills the weight cache for OC tile to of IC tile ti. One
// burst per output channel covers its icValid*K*K contiguous elements.
// Slots with oc >= ocValid or ic >= icValid keep stale bits: the zero
// padded input cancels invalid IC lanes and the Write stage discards
// invalid OC lanes.
func (f *fetchUnit) loadWeights(s *schedule, weights []fxp.Word, ti, to int) {
	k := s.p.Kernel
	icBase := ti * s.tileIC
	ocBase := to * s.tileOC
	icValid := s.icValid(ti)
	for oc := 0; oc < s.ocValid(to); oc++ {
		start := ((ocBase+oc)*s.p.InChannels + icBase) * k * k
		off := f.stage(weights, start, icValid*k*k)
		n := 0
		for ic := 0; ic < icValid; ic++ {
			for ky := 0; ky < k; ky++ {
				for kx := 0; kx < k; kx++ {
					f.weightCache[oc][ic][ky][kx] = f.staged(off + n)
					n++
				}
			}
		}
	}
}

// streamWeights emits the weight cache in (oc, ky, kx) order, one word of
// TileIC lanes per kernel position. All tileOC slots are streamed even
// when the tile is short on output channels; the Execute stage consumes a
// fixed tileOC*K*K words per OC tile.
func (f *fetchUnit) streamWeights(s *schedule, wtStream chan<- fxp.Word) {
	k := s.p.Kernel
	for oc := 0; oc < s.tileOC; oc++ {
		for ky := 0; ky < k; ky++ {
			for kx := 0; kx < k; kx++ {
				var w fxp.Word
				for ic := 0; ic < s.tileIC; ic++ {
					w.SetLane(ic, f.weightCache[oc][ic][ky][kx])
				}
				wtStream <- w
			}
		}
	}
}

// streamInput emits the input cache in K-major order: (ky, kx) outer,
// (i, j) inner. Word lane ic holds inputCache[ic][i*S+ky][j*S+kx], so the
// Execute stage sees, per kernel position, a full sweep of the output
// tile with all IC lanes in one word.
func (f *fetchUnit) streamInput(s *schedule, g tileGeom, inStream chan<- fxp.Word) {
	k := s.p.Kernel
	stride := s.p.Stride
	for ky := 0; ky < k; ky++ {
		for kx := 0; kx < k; kx++ {
			for i := 0; i < g.currH; i++ {
				for j := 0; j < g.currW; j++ {
					var w fxp.Word
					for ic := 0; ic < s.tileIC; ic++ {
						w.SetLane(ic, f.inputCache[ic][i*stride+ky][j*stride+kx])
					}
					inStream <- w
				}
			}
		}
	}
}
