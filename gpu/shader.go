// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ui/fragment"
)

//go:embed shaders/div.wgsl
var divShaderSource string

//go:embed shaders/text.wgsl
var textShaderSource string

//go:embed shaders/image.wgsl
var imageShaderSource string

// ShaderSource returns the WGSL source of the pipeline for kind.
func ShaderSource(kind fragment.Kind) (string, error) {
	switch kind {
	case fragment.KindDiv:
		return divShaderSource, nil
	case fragment.KindText:
		return textShaderSource, nil
	case fragment.KindImage:
		return imageShaderSource, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownPipeline, kind)
	}
}

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[4*i:])
	}
	return words, nil
}

func shaderSource(wgsl string, spirv bool) (hal.ShaderSource, error) {
	if !spirv {
		return hal.ShaderSource{WGSL: wgsl}, nil
	}
	words, err := CompileSPIRV(wgsl)
	if err != nil {
		return hal.ShaderSource{}, err
	}
	return hal.ShaderSource{SPIRV: words}, nil
}
