package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowSize(t *testing.T) {
	tests := []struct {
		old, size, want int
		grow            bool
	}{
		{old: 100, size: 50, want: 100, grow: false},
		{old: 100, size: 100, want: 100, grow: false},
		{old: 100, size: 120, want: 200, grow: true},
		{old: 100, size: 500, want: 500, grow: true},
		{old: 0, size: 8, want: 8, grow: true},
	}
	for _, tt := range tests {
		got, grow := GrowSize(tt.old, tt.size)
		assert.Equal(t, tt.want, got, "GrowSize(%d, %d)", tt.old, tt.size)
		assert.Equal(t, tt.grow, grow, "GrowSize(%d, %d) grow", tt.old, tt.size)
	}
}

func TestHostAllocatorAllocateGet(t *testing.T) {
	a := NewHostAllocator(0)
	h, err := a.Allocate(64)
	require.NoError(t, err)
	assert.NotEqual(t, InvalidHandle, h)

	b, err := a.Get(h)
	require.NoError(t, err)
	assert.Equal(t, 64, b.Size())

	_, err = a.Get(InvalidHandle)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestHostAllocatorHandlesAreUnique(t *testing.T) {
	a := NewHostAllocator(0)
	seen := make(map[Handle]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h, err := a.Allocate(16)
				assert.NoError(t, err)
				mu.Lock()
				assert.False(t, seen[h], "handle %d issued twice", h)
				seen[h] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, a.Len())
}

func TestHostAllocatorResize(t *testing.T) {
	a := NewHostAllocator(0)
	h, err := a.Allocate(100)
	require.NoError(t, err)

	before, _ := a.Get(h)
	require.NoError(t, a.Resize(h, 80))
	after, _ := a.Get(h)
	assert.Same(t, before, after, "shrinking resize must be a no-op")

	require.NoError(t, a.Resize(h, 120))
	b, _ := a.Get(h)
	assert.Equal(t, 200, b.Size(), "grows to twice the old capacity")

	require.NoError(t, a.Resize(h, 1000))
	b, _ = a.Get(h)
	assert.Equal(t, 1000, b.Size(), "grows to the requested size when larger")

	assert.ErrorIs(t, a.Resize(Handle(999), 10), ErrInvalidHandle)
}

func TestHostAllocatorBudget(t *testing.T) {
	a := NewHostAllocator(100)
	h, err := a.Allocate(60)
	require.NoError(t, err)

	_, err = a.Allocate(60)
	var ae *AllocError
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 60, ae.Size)

	// Growing 60 -> 120 would exceed the budget; the old buffer stays.
	err = a.Resize(h, 90)
	assert.ErrorIs(t, err, ErrExhausted)
	b, _ := a.Get(h)
	assert.Equal(t, 60, b.Size())

	require.NoError(t, a.Free(h))
	assert.Zero(t, a.Used())
	_, err = a.Allocate(100)
	assert.NoError(t, err)
}

func TestHostBufferWriteAt(t *testing.T) {
	a := NewHostAllocator(0)
	h, _ := a.Allocate(8)
	b, _ := a.Get(h)

	n, err := b.WriteAt([]byte{1, 2, 3}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0, 0, 1, 2, 3, 0, 0, 0}, b.(*HostBuffer).Bytes())

	_, err = b.WriteAt([]byte{1, 2, 3}, 6)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestWriteGrows(t *testing.T) {
	a := NewHostAllocator(0)
	h, _ := a.Allocate(4)
	require.NoError(t, Write(a, h, 0, make([]byte, 10)))
	b, _ := a.Get(h)
	assert.Equal(t, 10, b.Size())
}

func TestFrameBuffered(t *testing.T) {
	a := NewHostAllocator(0)
	f, err := NewFrameBuffered(a, 3, 16)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Frames())
	assert.Equal(t, 3, a.Len())

	assert.Equal(t, f.Handle(0), f.Handle(3))
	assert.NotEqual(t, f.Handle(0), f.Handle(1))

	require.NoError(t, f.Write(1, 0, []byte{9, 9}))
	b1, _ := f.Get(1)
	b0, _ := f.Get(0)
	assert.Equal(t, byte(9), b1.(*HostBuffer).Bytes()[0])
	assert.Equal(t, byte(0), b0.(*HostBuffer).Bytes()[0])

	require.NoError(t, f.Write(4, 0, make([]byte, 40)))
	b4, _ := f.Get(4)
	assert.Equal(t, 40, b4.Size())

	require.NoError(t, f.Free())
	assert.Zero(t, a.Len())
}

func TestFrameBufferedAllocationFailureReleases(t *testing.T) {
	a := NewHostAllocator(40)
	_, err := NewFrameBuffered(a, 3, 16)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Zero(t, a.Len())
	assert.Zero(t, a.Used())
}
