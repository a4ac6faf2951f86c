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

// Reference is the scalar golden model of the engine: for every output
// element it forms the full sum of products over (ic, ky, kx) with
// zero-padded borders, applies the fused affine and activation, and
// optionally reduces with a 2x2 stride-2 max pool.
//
// It is built on the same fxp primitives as the pipeline and is
// bit-identical to it by contract. Tensors are flat element slices in the
// same row-major layouts as the word-packed stores.
func Reference(p Params, input, weights, affine []fxp.Elem) []fxp.Elem {
	oh, ow := p.OutDims()
	out := make([]fxp.Elem, p.OutChannels*oh*ow)
	k := p.Kernel
	for oc := 0; oc < p.OutChannels; oc++ {
		scale := affine[oc*2]
		bias := affine[oc*2+1]
		for r := 0; r < oh; r++ {
			for c := 0; c < ow; c++ {
				hStart := r*p.Stride - p.Pad
				wStart := c*p.Stride - p.Pad
				var sum fxp.Acc
				for ic := 0; ic < p.InChannels; ic++ {
					for ky := 0; ky < k; ky++ {
						for kx := 0; kx < k; kx++ {
							ih := hStart + ky
							iw := wStart + kx
							if ih < 0 || ih >= p.Height || iw < 0 || iw >= p.Width {
								continue
							}
							in := input[(ic*p.Height+ih)*p.Width+iw]
							wt := weights[((oc*p.InChannels+ic)*k+ky)*k+kx]
							sum = fxp.Mac(sum, wt, in)
						}
					}
				}
				v := fxp.Affine(sum, scale, bias)
				out[(oc*oh+r)*ow+c] = fxp.Activate(v, p.Mode)
			}
		}
	}
	if p.UsePool {
		return MaxPool2x2(out, p.OutChannels, oh, ow)
	}
	return out
}

// MaxPool2x2 reduces each non-overlapping 2x2 block of a [C, H, W] tensor
// to its maximum. H and W must be even.
func MaxPool2x2(in []fxp.Elem, c, h, w int) []fxp.Elem {
	oh := h / 2
	ow := w / 2
	out := make([]fxp.Elem, c*oh*ow)
	for ch := 0; ch < c; ch++ {
		for r := 0; r < oh; r++ {
			for col := 0; col < ow; col++ {
				out[(ch*oh+r)*ow+col] = maxPool4(
					in[(ch*h+2*r)*w+2*col], in[(ch*h+2*r+1)*w+2*col],
					in[(ch*h+2*r)*w+2*col+1], in[(ch*h+2*r+1)*w+2*col+1])
			}
		}
	}
	return out
}
