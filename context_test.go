package ui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/element"
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/glyph"
	"github.com/gogpu/ui/gpu"
	"github.com/gogpu/ui/layout"
	"github.com/gogpu/ui/tree"
)

func goFace(t *testing.T) glyph.Face {
	t.Helper()
	face, err := glyph.NewSFNTFace("go", goregular.TTF)
	require.NoError(t, err)
	return face
}

// newContext builds a context with a white root, an inline text and an
// absolute red box at (100,100).
func newContext(t *testing.T, opts ...Option) (*Context, fragment.NodeID) {
	t.Helper()
	opts = append([]Option{WithWorkers(2), WithFontSource("go", goFace(t))}, opts...)
	c, err := NewContext(element.NewDiv(element.Style{Background: fragment.White}), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	var box fragment.NodeID
	require.NoError(t, c.Edit(func(tr *tree.Tree) error {
		b := tr.Builder(tr.Root())
		b.Child(element.NewText("Hi", element.Style{}), nil)
		b.Child(element.NewDiv(element.Style{
			Position:   layout.Absolute,
			Left:       layout.Pixels(100),
			Top:        layout.Pixels(100),
			Width:      layout.Pixels(50),
			Height:     layout.Pixels(50),
			Background: fragment.RGBA(1, 0, 0, 1),
		}), nil)
		box = b.Last()
		return b.Err()
	}))
	return c, box
}

func record(calls *[]fragment.NodeID) fragment.Encoder {
	return fragment.EncoderFunc(func(dc fragment.DrawCall) error {
		*calls = append(*calls, dc.Node)
		return nil
	})
}

func TestNewContextDefaults(t *testing.T) {
	c, err := NewContext(element.NewDiv(element.Style{}))
	require.NoError(t, err)
	defer c.Close()

	cfg := c.Config()
	assert.Equal(t, DefaultFramesInFlight, cfg.FramesInFlight)
	assert.Equal(t, geom.V2(DefaultWidth, DefaultHeight), c.Viewport())
	assert.IsType(t, &buffer.HostAllocator{}, c.Allocator())
	assert.Nil(t, c.Backend())
	assert.Empty(t, c.Fonts().Names())

	_, err = c.Render(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestNewContextRejectsBadConfig(t *testing.T) {
	_, err := NewContext(element.NewDiv(element.Style{}), WithConfig(Config{Workers: -1}))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewContext(nil)
	assert.ErrorIs(t, err, tree.ErrNilElement)
}

func TestFrameLifecycle(t *testing.T) {
	c, box := newContext(t)
	ctx := context.Background()

	f, err := c.BeginFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), f.Number())

	var calls []fragment.NodeID
	require.NoError(t, f.Paint(record(&calls)))
	assert.Len(t, calls, 3)
	assert.Equal(t, box, calls[2], "the red box paints after the text")

	next, err := c.BeginFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next.Number())
	assert.ErrorIs(t, f.Paint(record(&calls)), ErrStaleFrame)

	f.Done()
	f.Done()
	next.Done()
	assert.ErrorIs(t, next.Paint(record(&calls)), ErrFrameDone)
}

func TestFramesInFlightBounded(t *testing.T) {
	c, _ := newContext(t, WithConfig(Config{FramesInFlight: 2}))

	f1, err := c.BeginFrame(context.Background())
	require.NoError(t, err)
	f2, err := c.BeginFrame(context.Background())
	require.NoError(t, err)
	defer f2.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.BeginFrame(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	f1.Done()
	f3, err := c.BeginFrame(context.Background())
	require.NoError(t, err)
	f3.Done()
}

func TestDroppedFrameReleasesSlot(t *testing.T) {
	c, _ := newContext(t, WithConfig(Config{FramesInFlight: 1}))
	require.NoError(t, c.Edit(func(tr *tree.Tree) error {
		_, err := tr.Append(tr.Root(), element.NewText("x", element.Style{FontFamily: "missing"}))
		return err
	}))

	for range 2 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, err := c.BeginFrame(ctx)
		cancel()
		require.ErrorIs(t, err, glyph.ErrUnknownFont)
	}
	_, ok := c.HitTest(geom.V2(120, 120))
	assert.False(t, ok, "no frame to hit test")
}

func TestBudgetExhaustionDropsFrame(t *testing.T) {
	// Room for the atlas and little else.
	c, _ := newContext(t, WithConfig(Config{BufferBudget: 32<<10 + 64}))
	_, err := c.BeginFrame(context.Background())
	require.ErrorIs(t, err, buffer.ErrExhausted)
}

func TestHitTestAndDispatch(t *testing.T) {
	c, box := newContext(t)

	var got []tree.EventType
	require.NoError(t, c.Edit(func(tr *tree.Tree) error {
		return tr.On(box, tree.MouseDown, func(e *tree.Event) { got = append(got, e.Type) })
	}))
	_, ok := c.HitTest(geom.V2(120, 120))
	assert.False(t, ok, "edits invalidate the latest frame")

	f, err := c.BeginFrame(context.Background())
	require.NoError(t, err)
	defer f.Done()

	id, ok := c.HitTest(geom.V2(120, 120))
	require.True(t, ok)
	assert.Equal(t, box, id)

	id, ok = c.DispatchMouse(tree.MouseDown, tree.MouseEvent{Position: geom.V2(110, 140)})
	require.True(t, ok)
	assert.Equal(t, box, id)
	assert.Equal(t, []tree.EventType{tree.MouseDown}, got)
	assert.Equal(t, box, c.DispatchKey(tree.KeyEvent{}), "the mouse-down target takes focus")
}

func TestSetViewport(t *testing.T) {
	c, _ := newContext(t)
	c.SetViewport(320, 240)
	f, err := c.BeginFrame(context.Background())
	require.NoError(t, err)
	defer f.Done()
	assert.Equal(t, geom.V2(320, 240), f.Viewport())

	root, err := treeSlots(c)
	require.NoError(t, err)
	assert.Equal(t, float32(320), root.Measured.Width)
}

func treeSlots(c *Context) (tree.Slots, error) {
	var s tree.Slots
	err := c.Edit(func(tr *tree.Tree) error {
		var err error
		s, err = tr.Slots(tr.Root())
		return err
	})
	return s, err
}

func TestSnapshot(t *testing.T) {
	c, _ := newContext(t, WithConfig(Config{Viewport: ViewportConfig{Width: 200, Height: 200}}))
	e, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, e.Draws())

	img := e.Image(1)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestRenderOnDevice(t *testing.T) {
	dev, err := gpu.Open(&noop.API{})
	require.NoError(t, err)
	defer dev.Destroy()

	c, _ := newContext(t, WithDevice(dev), WithConfig(Config{Viewport: ViewportConfig{Width: 64, Height: 64}}))
	require.NotNil(t, c.Backend())
	assert.IsType(t, &buffer.DeviceAllocator{}, c.Allocator())

	target, err := c.Backend().NewTarget(64, 64)
	require.NoError(t, err)
	defer target.Destroy()

	draws, err := c.Render(context.Background(), target.View())
	require.NoError(t, err)
	assert.Equal(t, 3, draws)
}

func TestWithDeviceNeedsDeviceAllocator(t *testing.T) {
	dev, err := gpu.Open(&noop.API{})
	require.NoError(t, err)
	defer dev.Destroy()

	_, err = NewContext(element.NewDiv(element.Style{}),
		WithDevice(dev), WithAllocator(buffer.NewHostAllocator(0)))
	assert.ErrorIs(t, err, ErrAllocatorMismatch)
}

func TestCloseReleasesBuffers(t *testing.T) {
	alloc := buffer.NewHostAllocator(0)
	c, _ := newContext(t, WithAllocator(alloc))

	f, err := c.BeginFrame(context.Background())
	require.NoError(t, err)
	f.Done()
	assert.Positive(t, alloc.Len())

	require.NoError(t, c.Close())
	assert.Zero(t, alloc.Len())
	assert.NoError(t, c.Close())

	_, err = c.BeginFrame(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Edit(func(*tree.Tree) error { return nil }), ErrClosed)
}

func TestConfigFonts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "go.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0o600))

	c, err := NewContext(element.NewDiv(element.Style{}), WithConfig(Config{
		Fonts: FontConfig{
			Parser:  "freetype",
			Default: "body",
			Files:   map[string]string{"body": path, "alt": path},
		},
	}))
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, []string{"alt", "body"}, c.Fonts().Names())
	assert.Equal(t, "body", c.Fonts().Default())

	_, err = NewContext(element.NewDiv(element.Style{}), WithConfig(Config{
		Fonts: FontConfig{Files: map[string]string{"body": filepath.Join(dir, "missing.ttf")}},
	}))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
