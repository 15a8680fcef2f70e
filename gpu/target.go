// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the row alignment required by texture to buffer
// copies.
const copyPitchAlignment = 256

// Target is an offscreen color texture that can be read back.
type Target struct {
	b      *Backend
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

// NewTarget creates an offscreen target in the backend's format.
func (b *Backend) NewTarget(width, height uint32) (*Target, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("gpu: invalid target size %dx%d", width, height)
	}
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "ui_target",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        b.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create target texture: %w", err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "ui_target_view",
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create target view: %w", err)
	}
	return &Target{b: b, tex: tex, view: view, width: width, height: height}, nil
}

// View returns the texture view to render into.
func (t *Target) View() hal.TextureView { return t.view }

// Size returns the target dimensions.
func (t *Target) Size() (width, height uint32) { return t.width, t.height }

// Read copies the target back to the CPU.
func (t *Target) Read() (*image.NRGBA, error) {
	dev := t.b.device
	bytesPerRow := t.width * 4
	aligned := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(aligned) * uint64(t.height)

	staging, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "ui_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	defer dev.DestroyBuffer(staging)

	encoder, err := dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ui_readback_encoder"})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ui_readback"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: aligned, RowsPerImage: t.height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	if err := t.b.submit(encoder); err != nil {
		return nil, err
	}

	raw := make([]byte, size)
	if err := t.b.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("gpu: readback: %w", err)
	}
	return unpack(raw, int(t.width), int(t.height), int(aligned), t.b.format == gputypes.TextureFormatBGRA8Unorm), nil
}

// unpack strips row padding and converts premultiplied pixels, optionally
// in BGRA order, to straight-alpha NRGBA.
func unpack(raw []byte, w, h, stride int, bgra bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		src := raw[y*stride : y*stride+4*w]
		dst := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for x := 0; x < 4*w; x += 4 {
			r, g, b, a := src[x], src[x+1], src[x+2], src[x+3]
			if bgra {
				r, b = b, r
			}
			if a != 0 && a != 255 {
				r = uint8(min(int(r)*255/int(a), 255))
				g = uint8(min(int(g)*255/int(a), 255))
				b = uint8(min(int(b)*255/int(a), 255))
			}
			dst[x], dst[x+1], dst[x+2], dst[x+3] = r, g, b, a
		}
	}
	return img
}

// Destroy releases the texture.
func (t *Target) Destroy() {
	if t.view != nil {
		t.b.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.b.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}
