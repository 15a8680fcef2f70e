// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/fragment"
)

// ErrNotDeviceBuffer is returned when a draw call names a buffer that was
// not allocated on the device.
var ErrNotDeviceBuffer = errors.New("gpu: binding is not a device buffer")

// frameTimeout bounds the wait for a submitted frame.
const frameTimeout = 5 * time.Second

// Pass records draw calls into one render pass. It implements
// fragment.Encoder.
type Pass struct {
	b      *Backend
	rp     hal.RenderPassEncoder
	groups []hal.BindGroup
	draws  int
}

var _ fragment.Encoder = (*Pass)(nil)

// Draw implements fragment.Encoder.
func (p *Pass) Draw(dc fragment.DrawCall) error {
	pl, err := p.b.lookup(dc.Pipeline)
	if err != nil {
		return err
	}
	if want := len(bindings[dc.Pipeline]); len(dc.Bindings) != want {
		return fmt.Errorf("gpu: node %d: %s draw has %d bindings, want %d",
			dc.Node, dc.Pipeline, len(dc.Bindings), want)
	}

	entries := make([]gputypes.BindGroupEntry, len(dc.Bindings))
	for i, h := range dc.Bindings {
		buf, err := p.b.alloc.Get(h)
		if err != nil {
			return fmt.Errorf("gpu: node %d binding %d: %w", dc.Node, i, err)
		}
		db, ok := buf.(*buffer.DeviceBuffer)
		if !ok {
			return fmt.Errorf("gpu: node %d binding %d: %w", dc.Node, i, ErrNotDeviceBuffer)
		}
		entries[i] = gputypes.BindGroupEntry{
			Binding: uint32(i),
			Resource: gputypes.BufferBinding{
				Buffer: db.Native().NativeHandle(),
				Offset: 0,
				Size:   uint64(db.Size()),
			},
		}
	}
	group, err := p.b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   dc.Pipeline.String() + "_bind",
		Layout:  pl.layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("gpu: node %d: create bind group: %w", dc.Node, err)
	}
	p.groups = append(p.groups, group)

	p.rp.SetPipeline(pl.pipeline)
	p.rp.SetBindGroup(0, group, nil)
	p.rp.Draw(dc.VertexCount, dc.InstanceCount, 0, 0)
	p.draws++
	return nil
}

// Draws returns the number of draw calls recorded.
func (p *Pass) Draws() int { return p.draws }

func (p *Pass) release() {
	for _, g := range p.groups {
		p.b.device.DestroyBindGroup(g)
	}
	p.groups = nil
}

// Render clears view to clear, records paint into one render pass, submits
// it and waits for the GPU. It returns the number of draw calls.
func (b *Backend) Render(view hal.TextureView, clear fragment.Color, paint func(fragment.Encoder) error) (int, error) {
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "ui_frame_encoder",
	})
	if err != nil {
		return 0, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ui_frame"); err != nil {
		return 0, fmt.Errorf("gpu: begin encoding: %w", err)
	}

	c := clear.Premultiplied()
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "ui_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)},
		}},
	})

	pass := &Pass{b: b, rp: rp}
	defer pass.release()
	if err := paint(pass); err != nil {
		rp.End()
		encoder.DiscardEncoding()
		return 0, err
	}
	rp.End()

	if err := b.submit(encoder); err != nil {
		return 0, err
	}
	b.logger.Debug("gpu: frame submitted", "draws", pass.draws)
	return pass.draws, nil
}

func (b *Backend) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, frameTimeout)
	if err != nil || !ok {
		return fmt.Errorf("gpu: wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}
