// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// It is an alias for gpucontext.DeviceProvider so that any host in the
// gpucontext ecosystem can hand its device to the renderer.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle without a device. Used for CPU-only
// rendering.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}

var (
	// ErrNoHAL is returned for providers that do not expose hal types.
	ErrNoHAL = errors.New("gpu: provider does not expose HAL types")

	// ErrNoAdapter is returned when an instance has no adapters.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")

	// ErrNoBackend is returned when no hal backend is compiled in.
	ErrNoBackend = errors.New("gpu: vulkan backend not available")
)

// halProvider is implemented by hosts that expose their hal objects.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// InstanceFactory creates hal instances. hal backends and noop.API
// implement it.
type InstanceFactory interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// Device is an opened hal device and its queue.
type Device struct {
	Device hal.Device
	Queue  hal.Queue
	// Name is the adapter name, empty for adopted devices.
	Name string

	instance hal.Instance
	external bool
}

// FromProvider adopts the device of a host. Destroy leaves an adopted
// device alive.
func FromProvider(provider any) (*Device, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return &Device{Device: device, Queue: queue, external: true}, nil
}

// Open creates an instance with api and opens its best adapter, preferring
// discrete then integrated GPUs. A nil api selects the Vulkan backend.
func Open(api InstanceFactory) (*Device, error) {
	if api == nil {
		backend, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, ErrNoBackend
		}
		api = backend
	}
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}
	return &Device{
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Name:     selected.Info.Name,
		instance: instance,
	}, nil
}

// External reports whether the device belongs to a host.
func (d *Device) External() bool { return d.external }

// Destroy releases a device created by Open. It is safe to call more than
// once.
func (d *Device) Destroy() {
	if d.external {
		return
	}
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
