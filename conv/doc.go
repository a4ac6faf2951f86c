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

// Package conv implements a tiled fixed-point convolution engine that
// evaluates one convolutional layer of a Tiny-YOLO-style network per
// invocation: a KxK convolution over a [IC, H, W] Q8.8 activation volume,
// a fused per-channel affine (folded BatchNorm), an activation, and an
// optional 2x2 stride-2 max pool.
//
// The engine runs as a three-stage producer-consumer pipeline connected by
// bounded queues of 256-bit words:
//
//	backing store -> Fetch -> (input, weight streams) -> Execute
//	              -> output stream -> Write -> backing store
//
// Fetch loads one input tile per input-channel tile and reuses it across
// every output-channel tile; Execute holds partial sums across IC tiles in
// an on-chip buffer and applies the affine and activation on the last IC
// tile; Write packs finished tiles into 256-bit words at arbitrary element
// offsets with read-modify-write at partially covered edge words.
//
// All tensors live in caller-owned word-packed backing stores (see package
// fxp). An invocation is externally synchronous: Run returns only after
// every output word has been written. Reference implements the same layer
// as a scalar golden model built on the same fixed-point primitives; the
// two are bit-identical by contract.
package conv
