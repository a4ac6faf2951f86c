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

// writeUnit is the third pipeline stage. It demultiplexes finished output
// words into a tile buffer, optionally reduces 2x2 blocks to their max,
// and packs rows into 256-bit words at arbitrary element offsets.
//
// The work is phase-separated per row: read the partially covered edge
// words, pack all elements, then write the touched words back as one
// sequential burst. Interleaving the read-modify-write with packing would
// break burst inference on a memory interface and cache behavior in
// software, so the phases stay distinct.
type writeUnit struct {
	// tile collects one (row, col, OC) tile, demultiplexed from the
	// output stream.
	tile [TileOC][TileH][TileW]fxp.Elem

	// rowBuf stages the packed elements of one output row before the
	// burst write.
	rowBuf [TileW]fxp.Elem
}

func (w *writeUnit) run(s *schedule, output []fxp.Word, outStream <-chan fxp.Word) {
	for tr := 0; tr < s.rowTiles; tr++ {
		for tc := 0; tc < s.colTiles; tc++ {
			g := s.geom(tr, tc)
			for to := 0; to < s.ocTiles; to++ {
				w.readTile(s, g, outStream)
				if s.p.UsePool && s.p.PoolStride >= 2 {
					w.writePooled(s, g, to, output)
				} else {
					w.writeDirect(s, g, to, output)
				}
			}
		}
	}
}

// readTile consumes currH*currW words and demultiplexes the OC lanes.
func (w *writeUnit) readTile(s *schedule, g tileGeom, outStream <-chan fxp.Word) {
	for i := 0; i < g.currH; i++ {
		for j := 0; j < g.currW; j++ {
			word := <-outStream
			for oc := 0; oc < s.tileOC; oc++ {
				w.tile[oc][i][j] = word.Lane(oc)
			}
		}
	}
}

// writeDirect places the tile into the output tensor row by row.
func (w *writeUnit) writeDirect(s *schedule, g tileGeom, to int, output []fxp.Word) {
	for oc := 0; oc < s.ocValid(to); oc++ {
		globalOC := to*s.tileOC + oc
		for i := 0; i < g.currH; i++ {
			base := (globalOC*s.oh+g.rStart+i)*s.ow + g.cStart
			copy(w.rowBuf[:g.currW], w.tile[oc][i][:g.currW])
			w.placeRow(output, base, g.currW)
		}
	}
}

// writePooled reduces each 2x2 block of the tile to its maximum and
// places the pooled rows at the tile's position in the halved tensor.
// Tile boundaries stay aligned after halving because the tile sizes are
// even and the full output dimensions are validated even.
func (w *writeUnit) writePooled(s *schedule, g tileGeom, to int, output []fxp.Word) {
	finalH := s.oh / 2
	finalW := s.ow / 2
	ph := g.currH / 2
	pw := g.currW / 2
	for oc := 0; oc < s.ocValid(to); oc++ {
		globalOC := to*s.tileOC + oc
		for i := 0; i < ph; i++ {
			for j := 0; j < pw; j++ {
				w.rowBuf[j] = maxPool4(
					w.tile[oc][2*i][2*j], w.tile[oc][2*i+1][2*j],
					w.tile[oc][2*i][2*j+1], w.tile[oc][2*i+1][2*j+1])
			}
			base := (globalOC*finalH+g.rStart/2+i)*finalW + g.cStart/2
			w.placeRow(output, base, pw)
		}
	}
}

// placeRow packs count elements of rowBuf into the output store starting
// at flat index base. The row touches one or two words; a touched word is
// loaded back only when the row covers it partially, otherwise it starts
// from zero. Tiles are written in sequential schedule order, so a partial
// word always sees the bytes its neighbour wrote earlier.
func (w *writeUnit) placeRow(output []fxp.Word, base, count int) {
	startSlot := base & 15
	firstWord := base >> 4
	endIdx := base + count - 1
	endSlot := endIdx & 15
	lastWord := endIdx >> 4

	// Read phase: fetch edge words that are only partially overwritten.
	var words [2]fxp.Word
	for n := 0; n <= lastWord-firstWord; n++ {
		first := n == 0 && startSlot != 0
		last := firstWord+n == lastWord && endSlot != 15
		if first || last {
			words[n] = output[firstWord+n]
		}
	}

	// Pack phase: scatter the row into its slots.
	for j := 0; j < count; j++ {
		idx := startSlot + j
		words[idx>>4].SetLane(idx&15, w.rowBuf[j])
	}

	// Write phase: one sequential burst over the touched words.
	for n := 0; n <= lastWord-firstWord; n++ {
		output[firstWord+n] = words[n]
	}
}

func maxPool4(v0, v1, v2, v3 fxp.Elem) fxp.Elem {
	m01 := max(v0, v1)
	m23 := max(v2, v3)
	return max(m01, m23)
}
