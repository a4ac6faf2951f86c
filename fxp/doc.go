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

// Package fxp implements the fixed-point arithmetic kernel shared by the
// convolution engine and its golden reference.
//
// # Number formats
//
// Two formats are used throughout:
//   - Elem: Q8.8 signed fixed point (8 integer bits, 8 fractional bits),
//     the storage format of activations, weights and affine parameters.
//   - Acc: Q16.16 signed fixed point, the accumulator format of the
//     multiply-accumulate array.
//
// All conversions that discard fractional bits use round-to-nearest-even
// followed by saturation. Both the engine and the reference model call the
// same primitives, so any platform where the two disagree is a bug in this
// package, not in the callers.
//
// # Memory words
//
// Word is a 256-bit memory word carrying 16 consecutive Elem values,
// element i in bits [i*16+15 : i*16] (little-element first). Backing-store
// tensors are flat sequences of Elem packed 16 per Word.
//
// # Operations
//
// Arithmetic:
//   - Mul - Q8.8 multiply with widening, rounding and saturation
//   - Mac - saturating multiply-accumulate into Q16.16
//   - Narrow - Q16.16 to Q8.8 with round-to-nearest-even and saturation
//   - Affine - fused scale-and-bias applied to an accumulator
//   - Activate - linear / ReLU / leaky activation on a Q8.8 value
//
// Packing:
//   - Word.Lane / Word.SetLane - 16-bit lane access
//   - Pack16 / Unpack16 - whole-word element transfer
//   - LoadElem / StoreElem - flat-index access into a word-packed tensor
package fxp
