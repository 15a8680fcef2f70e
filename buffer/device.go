package buffer

import (
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ui/internal/logging"
)

// copyAlignment is the size and offset alignment required by
// hal.Queue.WriteBuffer.
const copyAlignment = 4

func alignUp(n int) int {
	return (n + copyAlignment - 1) &^ (copyAlignment - 1)
}

// DefaultDeviceUsage is the usage of buffers created by DeviceAllocator.
const DefaultDeviceUsage = gputypes.BufferUsageVertex |
	gputypes.BufferUsageUniform |
	gputypes.BufferUsageStorage |
	gputypes.BufferUsageCopyDst

// DeviceBuffer is GPU memory written through the device queue.
type DeviceBuffer struct {
	buf   hal.Buffer
	queue hal.Queue
	size  int
}

// Size implements Buffer.
func (b *DeviceBuffer) Size() int { return b.size }

// Native returns the underlying hal buffer for binding.
func (b *DeviceBuffer) Native() hal.Buffer { return b.buf }

// WriteAt implements io.WriterAt. Writes are padded to the queue's copy
// alignment.
func (b *DeviceBuffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off%copyAlignment != 0 || off+int64(len(p)) > int64(b.size) {
		return 0, ErrOutOfRange
	}
	data := p
	if n := alignUp(len(p)); n != len(p) {
		if off+int64(n) > int64(b.size) {
			return 0, ErrOutOfRange
		}
		data = make([]byte, n)
		copy(data, p)
	}
	b.queue.WriteBuffer(b.buf, uint64(off), data)
	return len(p), nil
}

// DeviceAllocator allocates buffers on a wgpu hal device.
type DeviceAllocator struct {
	device hal.Device
	queue  hal.Queue
	usage  gputypes.BufferUsage
	budget int

	mu     sync.Mutex
	next   Handle
	bufs   map[Handle]*DeviceBuffer
	used   int
	logger *slog.Logger
}

// NewDeviceAllocator creates an allocator on device. A budget of 0 means
// unlimited.
func NewDeviceAllocator(device hal.Device, queue hal.Queue, budget int) *DeviceAllocator {
	return &DeviceAllocator{
		device: device,
		queue:  queue,
		usage:  DefaultDeviceUsage,
		budget: budget,
		bufs:   make(map[Handle]*DeviceBuffer),
		logger: logging.Nop(),
	}
}

// SetLogger sets the logger used for growth diagnostics.
func (a *DeviceAllocator) SetLogger(l *slog.Logger) {
	l = logging.OrNop(l)
	a.mu.Lock()
	a.logger = l
	a.mu.Unlock()
}

func (a *DeviceAllocator) create(size int) (*DeviceBuffer, error) {
	n := alignUp(max(size, copyAlignment))
	if a.budget > 0 && a.used+n > a.budget {
		return nil, &AllocError{Size: size, Err: ErrExhausted}
	}
	buf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ui element buffer",
		Size:  uint64(n),
		Usage: a.usage,
	})
	if err != nil {
		return nil, &AllocError{Size: size, Err: err}
	}
	a.used += n
	return &DeviceBuffer{buf: buf, queue: a.queue, size: n}, nil
}

func (a *DeviceAllocator) destroy(b *DeviceBuffer) {
	a.used -= b.size
	a.device.DestroyBuffer(b.buf)
}

// Allocate implements Allocator.
func (a *DeviceAllocator) Allocate(size int) (Handle, error) {
	if size < 0 {
		return InvalidHandle, &AllocError{Size: size, Err: ErrInvalidSize}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	b, err := a.create(size)
	if err != nil {
		return InvalidHandle, err
	}
	a.next++
	a.bufs[a.next] = b
	return a.next, nil
}

// Resize implements Allocator.
func (a *DeviceAllocator) Resize(h Handle, size int) error {
	if size < 0 {
		return &AllocError{Size: size, Err: ErrInvalidSize}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	old, ok := a.bufs[h]
	if !ok {
		return ErrInvalidHandle
	}
	n, grow := GrowSize(old.size, size)
	if !grow {
		return nil
	}
	b, err := a.create(n)
	if err != nil {
		return err
	}
	a.destroy(old)
	a.bufs[h] = b
	a.logger.Debug("buffer: grew device buffer", "handle", uint64(h), "from", old.size, "to", b.size)
	return nil
}

// Get implements Allocator.
func (a *DeviceAllocator) Get(h Handle) (Buffer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.bufs[h]
	if !ok {
		return nil, ErrInvalidHandle
	}
	return b, nil
}

// Free implements Allocator.
func (a *DeviceAllocator) Free(h Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.bufs[h]
	if !ok {
		return ErrInvalidHandle
	}
	a.destroy(b)
	delete(a.bufs, h)
	return nil
}

// Close destroys every live buffer.
func (a *DeviceAllocator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for h, b := range a.bufs {
		a.destroy(b)
		delete(a.bufs, h)
	}
}
