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
	"sync"

	"github.com/LittleKorino/ObjectDetectionZCU102/fxp"
)

// streamDepth is the capacity of the queues connecting the stages, in
// 256-bit words. A few tiles of slack keeps all three stages busy without
// unbounded buffering.
const streamDepth = 1024

// Engine evaluates one convolutional layer per Run call. All on-chip
// buffers are allocated once in New and reused across invocations; the
// hot path performs no allocation.
//
// An Engine is not safe for concurrent Run calls. Successive invocations
// are sequentially ordered by the caller.
type Engine struct {
	tileH, tileW, tileIC, tileOC int

	fetch fetchUnit
	exec  executeUnit
	write writeUnit
}

// New returns an engine with the full tile geometry (16 in every
// dimension) and all working buffers allocated.
func New() *Engine {
	return &Engine{tileH: TileH, tileW: TileW, tileIC: TileIC, tileOC: TileOC}
}

// Run evaluates one layer. input, weights and output are word-packed
// tensors in the layouts described by the package documentation; affine
// holds 2*OC elements, (scale, bias) per output channel.
//
// Run validates p before touching any memory and returns a non-nil error,
// with no side effect, for unsupported parameters. A completed call has
// written every element of the output tensor; trailing lanes of the final
// output word are read back and left untouched.
//
// The output region must not alias the input or weight regions, and the
// caller must not mutate any region during the call.
func (e *Engine) Run(p Params, input, weights []fxp.Word, affine []fxp.Elem, output []fxp.Word) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s := newSchedule(p, e.tileH, e.tileW, e.tileIC, e.tileOC)
	if s.ocTiles > MaxOCSteps {
		return fmt.Errorf("conv: %d OC tiles exceed the psum capacity %d", s.ocTiles, MaxOCSteps)
	}
	if len(input) < fxp.WordsFor(p.inputElems()) {
		panic("conv: input store too short")
	}
	if len(weights) < fxp.WordsFor(p.weightElems()) {
		panic("conv: weight store too short")
	}
	if len(affine) < p.affineElems() {
		panic("conv: affine region too short")
	}
	if len(output) < fxp.WordsFor(p.outputElems()) {
		panic("conv: output store too short")
	}

	inStream := make(chan fxp.Word, streamDepth)
	wtStream := make(chan fxp.Word, streamDepth)
	outStream := make(chan fxp.Word, streamDepth)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		e.fetch.run(&s, input, weights, inStream, wtStream)
	}()
	go func() {
		defer wg.Done()
		e.exec.run(&s, affine, inStream, wtStream, outStream)
	}()
	go func() {
		defer wg.Done()
		e.write.run(&s, output, outStream)
	}()
	wg.Wait()
	return nil
}
