// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/internal/logging"
)

// ErrUnknownPipeline is returned for draw calls naming a kind with no
// pipeline.
var ErrUnknownPipeline = errors.New("gpu: unknown pipeline")

// Options configures a Backend.
type Options struct {
	// Format is the color target format. Zero means BGRA8Unorm.
	Format gputypes.TextureFormat

	// SPIRV compiles the shaders with naga instead of passing WGSL to the
	// device.
	SPIRV bool

	Logger *slog.Logger
}

// bindings lists the group 0 layout of each kind, in binding order. The
// order matches fragment.DrawCall.Bindings.
var bindings = [fragment.NumKinds][]gputypes.BufferBindingType{
	fragment.KindDiv: {
		gputypes.BufferBindingTypeUniform,
		gputypes.BufferBindingTypeReadOnlyStorage, // unit quad
	},
	fragment.KindText: {
		gputypes.BufferBindingTypeUniform,
		gputypes.BufferBindingTypeReadOnlyStorage, // placements
		gputypes.BufferBindingTypeReadOnlyStorage, // glyph instances
		gputypes.BufferBindingTypeReadOnlyStorage, // atlas points
		gputypes.BufferBindingTypeReadOnlyStorage, // atlas contours
	},
	fragment.KindImage: {
		gputypes.BufferBindingTypeUniform,
		gputypes.BufferBindingTypeReadOnlyStorage, // unit quad
		gputypes.BufferBindingTypeReadOnlyStorage, // pixels
	},
}

// pipeline is the compiled state for one element kind.
type pipeline struct {
	kind       fragment.Kind
	shader     hal.ShaderModule
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// Backend owns the render pipelines and executes draw calls.
type Backend struct {
	device hal.Device
	queue  hal.Queue
	alloc  *buffer.DeviceAllocator
	format gputypes.TextureFormat
	logger *slog.Logger

	pipelines [fragment.NumKinds]*pipeline
}

// NewBackend compiles every pipeline on device. Buffers named by draw calls
// are resolved through alloc.
func NewBackend(device hal.Device, queue hal.Queue, alloc *buffer.DeviceAllocator, opts Options) (*Backend, error) {
	if opts.Format == gputypes.TextureFormatUndefined {
		opts.Format = gputypes.TextureFormatBGRA8Unorm
	}
	opts.Logger = logging.OrNop(opts.Logger)
	b := &Backend{
		device: device,
		queue:  queue,
		alloc:  alloc,
		format: opts.Format,
		logger: opts.Logger,
	}
	for k := range fragment.NumKinds {
		p, err := b.createPipeline(fragment.Kind(k), opts.SPIRV)
		if err != nil {
			b.Destroy()
			return nil, err
		}
		b.pipelines[k] = p
	}
	b.logger.Debug("gpu: pipelines ready", "format", opts.Format, "spirv", opts.SPIRV)
	return b, nil
}

// Format returns the color target format the pipelines were built for.
func (b *Backend) Format() gputypes.TextureFormat { return b.format }

// Allocator returns the allocator draw call buffers are resolved with.
func (b *Backend) Allocator() *buffer.DeviceAllocator { return b.alloc }

// SetLogger replaces the logger. It must not be called during Render.
// Nil silences it.
func (b *Backend) SetLogger(l *slog.Logger) {
	l = logging.OrNop(l)
	b.logger = l
}

func (b *Backend) createPipeline(kind fragment.Kind, spirv bool) (*pipeline, error) {
	label := kind.String()
	wgsl, err := ShaderSource(kind)
	if err != nil {
		return nil, err
	}
	src, err := shaderSource(wgsl, spirv)
	if err != nil {
		return nil, fmt.Errorf("gpu: %s shader: %w", label, err)
	}

	p := &pipeline{kind: kind}
	p.shader, err = b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_shader",
		Source: src,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: compile %s shader: %w", label, err)
	}

	entries := make([]gputypes.BindGroupLayoutEntry, len(bindings[kind]))
	for i, typ := range bindings[kind] {
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: typ},
		}
	}
	p.layout, err = b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		b.destroyPipeline(p)
		return nil, fmt.Errorf("gpu: create %s bind layout: %w", label, err)
	}

	p.pipeLayout, err = b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.layout},
	})
	if err != nil {
		b.destroyPipeline(p)
		return nil, fmt.Errorf("gpu: create %s pipeline layout: %w", label, err)
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	p.pipeline, err = b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    b.format,
				Blend:     &premulBlend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		b.destroyPipeline(p)
		return nil, fmt.Errorf("gpu: create %s pipeline: %w", label, err)
	}
	return p, nil
}

// destroyPipeline releases p in reverse creation order.
func (b *Backend) destroyPipeline(p *pipeline) {
	if p.pipeline != nil {
		b.device.DestroyRenderPipeline(p.pipeline)
	}
	if p.pipeLayout != nil {
		b.device.DestroyPipelineLayout(p.pipeLayout)
	}
	if p.layout != nil {
		b.device.DestroyBindGroupLayout(p.layout)
	}
	if p.shader != nil {
		b.device.DestroyShaderModule(p.shader)
	}
}

// Destroy releases every pipeline. It is safe to call more than once.
func (b *Backend) Destroy() {
	for k, p := range b.pipelines {
		if p != nil {
			b.destroyPipeline(p)
			b.pipelines[k] = nil
		}
	}
}

func (b *Backend) lookup(kind fragment.Kind) (*pipeline, error) {
	if int(kind) >= len(b.pipelines) || b.pipelines[kind] == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPipeline, kind)
	}
	return b.pipelines[kind], nil
}
