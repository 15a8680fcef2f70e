package buffer

import "errors"

// FrameBuffered is a ring of buffers, one per frame in flight, so that a
// frame's writes never touch storage the GPU may still be reading for an
// earlier frame.
type FrameBuffered struct {
	alloc   Allocator
	handles []Handle
}

// NewFrameBuffered allocates frames buffers of size bytes each.
func NewFrameBuffered(a Allocator, frames, size int) (*FrameBuffered, error) {
	if frames < 1 {
		frames = 1
	}
	f := &FrameBuffered{alloc: a, handles: make([]Handle, 0, frames)}
	for i := 0; i < frames; i++ {
		h, err := a.Allocate(size)
		if err != nil {
			_ = f.Free()
			return nil, err
		}
		f.handles = append(f.handles, h)
	}
	return f, nil
}

// Frames returns the ring length.
func (f *FrameBuffered) Frames() int { return len(f.handles) }

// Handle returns the handle used for frame.
func (f *FrameBuffered) Handle(frame uint64) Handle {
	return f.handles[frame%uint64(len(f.handles))]
}

// Get returns the buffer used for frame.
func (f *FrameBuffered) Get(frame uint64) (Buffer, error) {
	return f.alloc.Get(f.Handle(frame))
}

// Write stores data at offset in the frame's buffer, growing it if needed.
func (f *FrameBuffered) Write(frame uint64, offset int, data []byte) error {
	return Write(f.alloc, f.Handle(frame), offset, data)
}

// Free releases every buffer in the ring.
func (f *FrameBuffered) Free() error {
	var errs []error
	for _, h := range f.handles {
		if err := f.alloc.Free(h); err != nil {
			errs = append(errs, err)
		}
	}
	f.handles = f.handles[:0]
	return errors.Join(errs...)
}
