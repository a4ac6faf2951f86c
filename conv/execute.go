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

// executeUnit is the second pipeline stage: a TileOC x TileIC MAC array in
// the abstract model. It consumes aligned weight and input streams,
// accumulates into Q16.16, carries partial sums across IC tiles, and on
// the last IC tile applies the fused affine and activation and emits
// packed output words.
type executeUnit struct {
	// acc is the working accumulator tile for the current OC tile.
	acc [TileOC][TileH][TileW]fxp.Acc

	// psum parks accumulator tiles between IC iterations, one slot per OC
	// tile. Intrinsic to the IC-outer schedule: every OC tile's partial
	// sums must survive while the next input tile is fetched.
	psum [MaxOCSteps][TileOC][TileH][TileW]fxp.Acc

	// wt is the register file holding one OC tile's kernels unpacked.
	wt [TileOC][TileIC][KMax][KMax]fxp.Elem

	// scaleBuf and biasBuf hold the fused affine for the current OC tile.
	scaleBuf [TileOC]fxp.Elem
	biasBuf  [TileOC]fxp.Elem
}

func (e *executeUnit) run(s *schedule, affine []fxp.Elem, inStream, wtStream <-chan fxp.Word, outStream chan<- fxp.Word) {
	for tr := 0; tr < s.rowTiles; tr++ {
		for tc := 0; tc < s.colTiles; tc++ {
			g := s.geom(tr, tc)
			for ti := 0; ti < s.icTiles; ti++ {
				firstIC := ti == 0
				lastIC := ti == s.icTiles-1
				for to := 0; to < s.ocTiles; to++ {
					if firstIC {
						e.clearAcc(g)
					} else {
						e.loadPsum(to, g)
					}
					if lastIC {
						e.loadAffine(s, affine, to)
					}
					e.readWeights(s, wtStream)
					e.compute(s, g, inStream)
					if lastIC {
						e.emit(s, g, outStream)
					} else {
						e.savePsum(to, g)
					}
				}
			}
		}
	}
	close(outStream)
}

func (e *executeUnit) clearAcc(g tileGeom) {
	for oc := 0; oc < TileOC; oc++ {
		for i := 0; i < g.currH; i++ {
			for j := 0; j < g.currW; j++ {
				e.acc[oc][i][j] = 0
			}
		}
	}
}

func (e *executeUnit) loadPsum(to int, g tileGeom) {
	for oc := 0; oc < TileOC; oc++ {
		for i := 0; i < g.currH; i++ {
			copy(e.acc[oc][i][:g.currW], e.psum[to][oc][i][:g.currW])
		}
	}
}

func (e *executeUnit) savePsum(to int, g tileGeom) {
	for oc := 0; oc < TileOC; oc++ {
		for i := 0; i < g.currH; i++ {
			copy(e.psum[to][oc][i][:g.currW], e.acc[oc][i][:g.currW])
		}
	}
}

// loadAffine fills the scale and bias registers for OC tile to. Entry
// 2*oc of the affine region is the channel's scale, entry 2*oc+1 its bias.
func (e *executeUnit) loadAffine(s *schedule, affine []fxp.Elem, to int) {
	base := to * s.tileOC * 2
	for idx := 0; idx < s.ocValid(to)*2; idx++ {
		v := affine[base+idx]
		if idx&1 != 0 {
			e.biasBuf[idx>>1] = v
		} else {
			e.scaleBuf[idx>>1] = v
		}
	}
}

// readWeights consumes exactly tileOC*K*K words into the register file.
func (e *executeUnit) readWeights(s *schedule, wtStream <-chan fxp.Word) {
	k := s.p.Kernel
	for oc := 0; oc < s.tileOC; oc++ {
		for ky := 0; ky < k; ky++ {
			for kx := 0; kx < k; kx++ {
				w := <-wtStream
				for ic := 0; ic < s.tileIC; ic++ {
					e.wt[oc][ic][ky][kx] = w.Lane(ic)
				}
			}
		}
	}
}

// compute consumes K*K*currH*currW input words in K-major order and
// updates all tileOC accumulators per word. The per-word dot product over
// IC lanes is a linear saturating MAC chain; intermediate order across
// lanes is free because the Q16.16 range is effectively unreachable and
// narrowing happens exactly once, in emit.
func (e *executeUnit) compute(s *schedule, g tileGeom, inStream <-chan fxp.Word) {
	k := s.p.Kernel
	for ky := 0; ky < k; ky++ {
		for kx := 0; kx < k; kx++ {
			for i := 0; i < g.currH; i++ {
				for j := 0; j < g.currW; j++ {
					in := <-inStream
					for oc := 0; oc < s.tileOC; oc++ {
						acc := e.acc[oc][i][j]
						for ic := 0; ic < s.tileIC; ic++ {
							acc = fxp.Mac(acc, e.wt[oc][ic][ky][kx], in.Lane(ic))
						}
						e.acc[oc][i][j] = acc
					}
				}
			}
		}
	}
}

// emit applies the fused affine and activation and streams one word per
// output position, lane oc carrying channel ocBase+oc. Lanes in
// [ocValid, tileOC) carry whatever the stale weights produced; the Write
// stage discards them.
func (e *executeUnit) emit(s *schedule, g tileGeom, outStream chan<- fxp.Word) {
	mode := s.p.Mode
	for i := 0; i < g.currH; i++ {
		for j := 0; j < g.currW; j++ {
			var w fxp.Word
			for oc := 0; oc < s.tileOC; oc++ {
				v := fxp.Affine(e.acc[oc][i][j], e.scaleBuf[oc], e.biasBuf[oc])
				w.SetLane(oc, fxp.Activate(v, mode))
			}
			outStream <- w
		}
	}
}
