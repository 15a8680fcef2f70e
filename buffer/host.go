package buffer

import (
	"log/slog"
	"sync"

	"github.com/gogpu/ui/internal/logging"
)

// HostBuffer is CPU memory.
type HostBuffer struct {
	mu   sync.RWMutex
	data []byte
}

// Size implements Buffer.
func (b *HostBuffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// WriteAt implements io.WriterAt.
func (b *HostBuffer) WriteAt(p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if off < 0 || off+int64(len(p)) > int64(len(b.data)) {
		return 0, ErrOutOfRange
	}
	return copy(b.data[off:], p), nil
}

// Bytes returns a copy of the buffer contents.
func (b *HostBuffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]byte(nil), b.data...)
}

// HostAllocator allocates HostBuffers, optionally within a byte budget.
type HostAllocator struct {
	mu     sync.Mutex
	next   Handle
	bufs   map[Handle]*HostBuffer
	budget int
	used   int
	logger *slog.Logger
}

// NewHostAllocator creates an allocator. A budget of 0 means unlimited.
func NewHostAllocator(budget int) *HostAllocator {
	return &HostAllocator{
		bufs:   make(map[Handle]*HostBuffer),
		budget: budget,
		logger: logging.Nop(),
	}
}

// SetLogger sets the logger used for growth diagnostics.
func (a *HostAllocator) SetLogger(l *slog.Logger) {
	l = logging.OrNop(l)
	a.mu.Lock()
	a.logger = l
	a.mu.Unlock()
}

func (a *HostAllocator) reserveLocked(size int) error {
	if a.budget > 0 && a.used+size > a.budget {
		return &AllocError{Size: size, Err: ErrExhausted}
	}
	a.used += size
	return nil
}

// Allocate implements Allocator.
func (a *HostAllocator) Allocate(size int) (Handle, error) {
	if size < 0 {
		return InvalidHandle, &AllocError{Size: size, Err: ErrInvalidSize}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.reserveLocked(size); err != nil {
		return InvalidHandle, err
	}
	a.next++
	h := a.next
	a.bufs[h] = &HostBuffer{data: make([]byte, size)}
	return h, nil
}

// Resize implements Allocator.
func (a *HostAllocator) Resize(h Handle, size int) error {
	if size < 0 {
		return &AllocError{Size: size, Err: ErrInvalidSize}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.bufs[h]
	if !ok {
		return ErrInvalidHandle
	}
	old := len(b.data)
	n, grow := GrowSize(old, size)
	if !grow {
		return nil
	}
	if err := a.reserveLocked(n - old); err != nil {
		return err
	}
	a.bufs[h] = &HostBuffer{data: make([]byte, n)}
	a.logger.Debug("buffer: grew", "handle", uint64(h), "from", old, "to", n)
	return nil
}

// Get implements Allocator.
func (a *HostAllocator) Get(h Handle) (Buffer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.bufs[h]
	if !ok {
		return nil, ErrInvalidHandle
	}
	return b, nil
}

// Free implements Allocator.
func (a *HostAllocator) Free(h Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.bufs[h]
	if !ok {
		return ErrInvalidHandle
	}
	a.used -= len(b.data)
	delete(a.bufs, h)
	return nil
}

// Used returns the number of bytes currently allocated.
func (a *HostAllocator) Used() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// Len returns the number of live buffers.
func (a *HostAllocator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.bufs)
}
