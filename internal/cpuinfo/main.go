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

// Package main prints the host CPU features relevant to a vectorized
// overlay of the MAC kernel, plus the engine's tile geometry.
package main

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/LittleKorino/ObjectDetectionZCU102/conv"
)

func main() {
	fmt.Printf("GOOS: %s\n", runtime.GOOS)
	fmt.Printf("GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("NumCPU: %d\n", runtime.NumCPU())
	fmt.Println()

	fmt.Println("=== engine geometry ===")
	fmt.Printf("  tile: %dx%d, %d OC x %d IC lanes\n", conv.TileH, conv.TileW, conv.TileOC, conv.TileIC)
	fmt.Printf("  input cache: %dx%d (K<=%d, stride<=%d)\n", conv.CacheH, conv.CacheW, conv.KMax, conv.MaxStride)
	fmt.Printf("  psum slots: %d (up to %d output channels)\n", conv.MaxOCSteps, conv.MaxOC)
	fmt.Println()

	switch runtime.GOARCH {
	case "arm64":
		printARM64Features()
	case "amd64":
		printAMD64Features()
	}
}

func printARM64Features() {
	fmt.Println("=== golang.org/x/sys/cpu.ARM64 ===")
	fmt.Printf("  HasASIMD:   %v (NEON baseline, 16-bit lanes)\n", cpu.ARM64.HasASIMD)
	fmt.Printf("  HasASIMDDP: %v (dot product)\n", cpu.ARM64.HasASIMDDP)
	fmt.Printf("  HasSVE:     %v (Scalable Vector Extension)\n", cpu.ARM64.HasSVE)
	fmt.Printf("  HasSVE2:    %v (SVE2)\n", cpu.ARM64.HasSVE2)
}

func printAMD64Features() {
	fmt.Println("=== golang.org/x/sys/cpu.X86 ===")
	fmt.Printf("  HasSSE2:     %v\n", cpu.X86.HasSSE2)
	fmt.Printf("  HasSSE41:    %v\n", cpu.X86.HasSSE41)
	fmt.Printf("  HasAVX:      %v\n", cpu.X86.HasAVX)
	fmt.Printf("  HasAVX2:     %v (16 x int16 per 256-bit word)\n", cpu.X86.HasAVX2)
	fmt.Printf("  HasAVX512F:  %v\n", cpu.X86.HasAVX512F)
	fmt.Printf("  HasAVX512BW: %v (int16 lanes at 512 bits)\n", cpu.X86.HasAVX512BW)
}
