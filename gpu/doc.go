// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu executes the draw calls produced by a painted tree on a
// wgpu hal device.
//
// # Key Principle
//
// The host application usually owns the device. FromProvider adopts the
// device and queue of a gpucontext provider; Open creates a device for
// headless use.
//
// # Pipelines
//
// NewBackend builds one render pipeline per element kind before returning:
//
//   - div: rounded box with an inner border
//   - text: instanced glyph quads filled by winding number
//   - image: NRGBA pixels read from a storage buffer
//
// Every buffer a draw call names is resolved through the buffer.DeviceAllocator
// the elements wrote to, and bound in order to group 0.
//
// # Usage
//
//	dev, _ := gpu.Open(nil)
//	alloc := buffer.NewDeviceAllocator(dev.Device, dev.Queue, 0)
//	backend, _ := gpu.NewBackend(dev.Device, dev.Queue, alloc, gpu.Options{})
//	target, _ := backend.NewTarget(800, 600)
//	err := backend.Render(target.View(), fragment.White, tree.Paint)
package gpu
