// Package buffer provides handle-based, growable backing storage for
// element geometry, placements and uniforms.
//
// Elements never hold raw buffers across frames; they keep a Handle and look
// the buffer up through the Allocator each time. A Resize may replace the
// buffer behind a handle, and contents are not preserved when it does.
package buffer

import (
	"errors"
	"fmt"
	"io"
)

// Handle identifies a buffer owned by an Allocator. The zero Handle is
// never issued.
type Handle uint64

// InvalidHandle is the zero Handle.
const InvalidHandle Handle = 0

// Sentinel errors for the buffer package.
var (
	// ErrInvalidHandle is returned for handles the allocator did not issue
	// or has already freed.
	ErrInvalidHandle = errors.New("buffer: invalid handle")

	// ErrExhausted is returned when an allocation would exceed the
	// allocator's budget or the device refuses it.
	ErrExhausted = errors.New("buffer: allocator exhausted")

	// ErrInvalidSize is returned for negative sizes.
	ErrInvalidSize = errors.New("buffer: invalid size")

	// ErrOutOfRange is returned by WriteAt when the write does not fit.
	ErrOutOfRange = errors.New("buffer: write out of range")
)

// AllocError reports a failed allocation or resize.
type AllocError struct {
	Size int
	Err  error
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("buffer: allocate %d bytes: %v", e.Size, e.Err)
}

func (e *AllocError) Unwrap() error { return e.Err }

// Buffer is a fixed-capacity region of backing storage.
type Buffer interface {
	io.WriterAt

	// Size returns the capacity in bytes.
	Size() int
}

// Allocator issues and grows buffers.
//
// Implementations must be safe for concurrent use: parallel pipeline phases
// allocate from the same Allocator.
type Allocator interface {
	// Allocate creates a buffer of at least size bytes.
	Allocate(size int) (Handle, error)

	// Resize ensures the buffer behind h holds at least size bytes. It is a
	// no-op when the current capacity suffices; otherwise the buffer is
	// replaced by one of max(2*capacity, size) bytes with undefined
	// contents. On failure the old buffer is left in place.
	Resize(h Handle, size int) error

	// Get returns the current buffer behind h.
	Get(h Handle) (Buffer, error)

	// Free releases the buffer behind h.
	Free(h Handle) error
}

// GrowSize returns the capacity a Resize to size selects for a buffer of
// capacity old, and whether any growth is needed.
func GrowSize(old, size int) (int, bool) {
	if size <= old {
		return old, false
	}
	return max(2*old, size), true
}

// Write resizes h to fit data at offset and writes it.
func Write(a Allocator, h Handle, offset int, data []byte) error {
	if err := a.Resize(h, offset+len(data)); err != nil {
		return err
	}
	b, err := a.Get(h)
	if err != nil {
		return err
	}
	_, err = b.WriteAt(data, int64(offset))
	return err
}
