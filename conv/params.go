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

import (
	"fmt"

	"github.com/LittleKorino/ObjectDetectionZCU102/fxp"
)

// Engine geometry. The on-chip buffers are dimensioned by these constants;
// the tile sizes actually used by a run never exceed them.
const (
	// TileH and TileW are the output tile height and width.
	TileH = 16
	TileW = 16

	// TileOC and TileIC are the channel tile sizes. One streamed word
	// carries TileIC input-channel lanes; the MAC array updates TileOC
	// output channels per word.
	TileOC = 16
	TileIC = 16

	// KMax is the largest supported kernel size.
	KMax = 3

	// MaxStride is the largest supported convolution stride.
	MaxStride = 2

	// CacheH and CacheW size the on-chip input cache: one output tile's
	// receptive field at the maximum stride and kernel size.
	CacheH = TileH*MaxStride + KMax - 1
	CacheW = TileW*MaxStride + KMax - 1

	// MaxOCSteps bounds the number of output-channel tiles per layer; the
	// partial-sum buffer holds one accumulator tile per step.
	MaxOCSteps = 64

	// MaxOC is the largest supported output channel count.
	MaxOC = MaxOCSteps * TileOC
)

// Params describes one layer invocation.
type Params struct {
	InChannels  int // IC
	OutChannels int // OC
	Height      int // H, input rows
	Width       int // W, input columns
	Kernel      int // K, 1 or 3
	Stride      int // S, 1 or 2
	Pad         int // P, 0 or 1, zero padding on all four borders
	UsePool     bool
	PoolStride  int // only 2 is exercised by the engine
	Mode        fxp.Activation
}

// OutDims returns the pre-pool output dimensions (OH, OW).
func (p Params) OutDims() (int, int) {
	oh := (p.Height+2*p.Pad-p.Kernel)/p.Stride + 1
	ow := (p.Width+2*p.Pad-p.Kernel)/p.Stride + 1
	return oh, ow
}

// FinalDims returns the dimensions of the tensor actually written: OutDims
// halved when pooling is enabled.
func (p Params) FinalDims() (int, int) {
	oh, ow := p.OutDims()
	if p.UsePool {
		return oh / 2, ow / 2
	}
	return oh, ow
}

// Validate rejects parameter combinations the engine does not support.
// A rejected invocation has no memory effect.
func (p Params) Validate() error {
	if p.Kernel > KMax {
		return fmt.Errorf("conv: kernel size %d exceeds maximum %d", p.Kernel, KMax)
	}
	if p.Kernel != 1 && p.Kernel != 3 {
		return fmt.Errorf("conv: unsupported kernel size %d", p.Kernel)
	}
	if p.Stride != 1 && p.Stride != MaxStride {
		return fmt.Errorf("conv: unsupported stride %d", p.Stride)
	}
	if p.Pad != 0 && p.Pad != 1 {
		return fmt.Errorf("conv: unsupported padding %d", p.Pad)
	}
	if p.InChannels <= 0 || p.OutChannels <= 0 || p.Height <= 0 || p.Width <= 0 {
		return fmt.Errorf("conv: non-positive tensor dimension")
	}
	if p.OutChannels > MaxOC {
		return fmt.Errorf("conv: %d output channels exceed maximum %d", p.OutChannels, MaxOC)
	}
	if (p.Height+2*p.Pad-p.Kernel)%p.Stride != 0 || (p.Width+2*p.Pad-p.Kernel)%p.Stride != 0 {
		return fmt.Errorf("conv: geometry %dx%d K=%d S=%d P=%d does not divide evenly",
			p.Height, p.Width, p.Kernel, p.Stride, p.Pad)
	}
	if p.UsePool {
		if p.PoolStride != 2 {
			return fmt.Errorf("conv: pooling requires stride 2, got %d", p.PoolStride)
		}
		oh, ow := p.OutDims()
		if oh%2 != 0 || ow%2 != 0 {
			return fmt.Errorf("conv: pooled output needs even dimensions, got %dx%d", oh, ow)
		}
	}
	return nil
}

// inputElems, weightElems, affineElems and outputElems give the flat
// element counts of the four backing regions for these parameters.

func (p Params) inputElems() int  { return p.InChannels * p.Height * p.Width }
func (p Params) weightElems() int { return p.OutChannels * p.InChannels * p.Kernel * p.Kernel }
func (p Params) affineElems() int { return 2 * p.OutChannels }

func (p Params) outputElems() int {
	fh, fw := p.FinalDims()
	return p.OutChannels * fh * fw
}
