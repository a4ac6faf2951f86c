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

// schedule enumerates the tile iteration space of one invocation. The
// canonical order is (row tile, col tile, IC tile, OC tile): IC-outer so
// the fetched input tile is reused across every OC tile, with partial sums
// carried between IC iterations in the psum buffer.
//
// All three pipeline stages walk the same schedule; it is the only piece
// of control state they share.
type schedule struct {
	p      Params
	oh, ow int

	tileH, tileW, tileIC, tileOC int

	rowTiles, colTiles, icTiles, ocTiles int
}

// tileGeom is the geometry of one (row, col) output tile: the clipped
// output extent plus the input window feeding it. hBase and wBase may be
// negative at the top/left borders; the overhang reads as zero padding.
type tileGeom struct {
	rStart, cStart int // output coordinates of the tile origin
	currH, currW   int // effective tile size, clipped at the boundary
	inH, inW       int // required input window size
	hBase, wBase   int // input coordinates of the window origin
}

func newSchedule(p Params, tileH, tileW, tileIC, tileOC int) schedule {
	oh, ow := p.OutDims()
	return schedule{
		p:        p,
		oh:       oh,
		ow:       ow,
		tileH:    tileH,
		tileW:    tileW,
		tileIC:   tileIC,
		tileOC:   tileOC,
		rowTiles: ceilDiv(oh, tileH),
		colTiles: ceilDiv(ow, tileW),
		icTiles:  ceilDiv(p.InChannels, tileIC),
		ocTiles:  ceilDiv(p.OutChannels, tileOC),
	}
}

func (s *schedule) geom(tr, tc int) tileGeom {
	g := tileGeom{
		rStart: tr * s.tileH,
		cStart: tc * s.tileW,
	}
	g.currH = min(s.tileH, s.oh-g.rStart)
	g.currW = min(s.tileW, s.ow-g.cStart)
	g.inH = g.currH*s.p.Stride + s.p.Kernel - 1
	g.inW = g.currW*s.p.Stride + s.p.Kernel - 1
	g.hBase = g.rStart*s.p.Stride - s.p.Pad
	g.wBase = g.cStart*s.p.Stride - s.p.Pad
	return g
}

// icValid returns how many input channels of IC tile ti are real.
func (s *schedule) icValid(ti int) int {
	return min(s.tileIC, s.p.InChannels-ti*s.tileIC)
}

// ocValid returns how many output channels of OC tile to are real.
func (s *schedule) ocValid(to int) int {
	return min(s.tileOC, s.p.OutChannels-to*s.tileOC)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
