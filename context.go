package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"
	"golang.org/x/sync/semaphore"

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/glyph"
	"github.com/gogpu/ui/gpu"
	"github.com/gogpu/ui/snapshot"
	"github.com/gogpu/ui/tree"
)

var (
	// ErrClosed is returned by operations on a closed Context.
	ErrClosed = errors.New("ui: context closed")

	// ErrNoBackend is returned by Render on a Context without a device.
	ErrNoBackend = errors.New("ui: context has no GPU backend")

	// ErrStaleFrame is returned when a frame is painted after a newer frame
	// was begun.
	ErrStaleFrame = errors.New("ui: frame is not the latest")

	// ErrFrameDone is returned when a frame is painted after Done.
	ErrFrameDone = errors.New("ui: frame already done")

	// ErrAllocatorMismatch is returned when WithDevice is combined with an
	// allocator that does not hold device buffers.
	ErrAllocatorMismatch = errors.New("ui: device rendering needs a *buffer.DeviceAllocator")
)

// Context owns everything a tree needs to produce frames: the buffer
// allocator, the font library and glyph cache, the glyph atlas, the GPU
// backend when rendering on a device, and the frame limiter. It replaces
// process-wide caches with one explicit object.
//
// Context methods are safe for concurrent use. Tree edits must go through
// Edit so they never race with a frame update.
type Context struct {
	cfg      Config
	viewport geom.Vec2
	clear    fragment.Color

	alloc    buffer.Allocator
	ownAlloc *buffer.DeviceAllocator
	fonts    *glyph.Library
	glyphs   *glyph.Cache
	atlas    *glyph.Atlas
	tree     *tree.Tree
	backend  *gpu.Backend

	frames *semaphore.Weighted

	mu     sync.Mutex
	next   uint64
	latest *Frame
	closed bool

	logger    atomic.Pointer[slog.Logger]
	ownLogger bool
}

// NewContext creates a Context whose tree has root as its root element.
func NewContext(root tree.Element, opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cfg := o.cfg.withDefaults()
	if o.workers != nil {
		cfg.Workers = *o.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := o.logger
	c := &Context{
		cfg:       cfg,
		viewport:  cfg.ViewportSize(),
		clear:     cfg.ClearColor(),
		ownLogger: logger != nil,
	}
	if logger == nil {
		logger = Logger()
	}
	c.logger.Store(logger)

	if err := c.initBuffers(o, logger); err != nil {
		c.destroy()
		return nil, err
	}
	if err := c.initFonts(o); err != nil {
		c.destroy()
		return nil, err
	}

	var err error
	c.glyphs = glyph.NewCache(c.fonts, cfg.Processor())
	if c.atlas, err = glyph.NewAtlas(c.alloc); err != nil {
		c.destroy()
		return nil, fmt.Errorf("ui: create glyph atlas: %w", err)
	}
	if c.tree, err = tree.New(root, tree.WithWorkers(cfg.Workers)); err != nil {
		c.destroy()
		return nil, err
	}
	c.frames = semaphore.NewWeighted(int64(cfg.FramesInFlight))

	c.propagateLogger(logger)
	register(c)
	logger.Info("ui: context created",
		"viewport", c.viewport,
		"frames_in_flight", cfg.FramesInFlight,
		"gpu", c.backend != nil)
	return c, nil
}

func (c *Context) initBuffers(o options, logger *slog.Logger) error {
	if o.device == nil {
		if o.alloc != nil {
			c.alloc = o.alloc
		} else {
			c.alloc = buffer.NewHostAllocator(c.cfg.BufferBudget)
		}
		return nil
	}

	var da *buffer.DeviceAllocator
	if o.alloc != nil {
		var ok bool
		if da, ok = o.alloc.(*buffer.DeviceAllocator); !ok {
			return fmt.Errorf("%w: got %T", ErrAllocatorMismatch, o.alloc)
		}
	} else {
		da = buffer.NewDeviceAllocator(o.device.Device, o.device.Queue, c.cfg.BufferBudget)
		c.ownAlloc = da
	}
	c.alloc = da

	b, err := gpu.NewBackend(o.device.Device, o.device.Queue, da, gpu.Options{
		SPIRV:  o.spirv,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("ui: create backend: %w", err)
	}
	c.backend = b
	logger.Info("ui: backend created", "device", o.device.Name, "format", b.Format())
	return nil
}

func (c *Context) initFonts(o options) error {
	c.fonts = glyph.NewLibrary()
	for _, f := range o.fonts {
		c.fonts.Register(f.name, f.face)
	}
	names := make([]string, 0, len(c.cfg.Fonts.Files))
	for name := range c.cfg.Fonts.Files {
		names = append(names, name)
	}
	slices.Sort(names)
	parser := glyph.Parser(c.cfg.Fonts.Parser)
	for _, name := range names {
		if err := c.fonts.Load(name, c.cfg.Fonts.Files[name], parser); err != nil {
			return err
		}
	}
	if c.cfg.Fonts.Default != "" {
		return c.fonts.SetDefault(c.cfg.Fonts.Default)
	}
	return nil
}

func (c *Context) log() *slog.Logger { return c.logger.Load() }

// propagateLogger hands l to every component that logs.
func (c *Context) propagateLogger(l *slog.Logger) {
	c.logger.Store(l)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range []loggerSetter{c.tree, c.glyphs} {
		s.SetLogger(l)
	}
	if s, ok := c.alloc.(loggerSetter); ok {
		s.SetLogger(l)
	}
	if c.backend != nil {
		c.backend.SetLogger(l)
	}
}

// Config returns the configuration the Context was created with, with
// defaults filled in.
func (c *Context) Config() Config { return c.cfg }

// Fonts returns the font library.
func (c *Context) Fonts() *glyph.Library { return c.fonts }

// Glyphs returns the glyph cache.
func (c *Context) Glyphs() *glyph.Cache { return c.glyphs }

// Allocator returns the buffer allocator.
func (c *Context) Allocator() buffer.Allocator { return c.alloc }

// Backend returns the GPU backend, or nil without a device.
func (c *Context) Backend() *gpu.Backend { return c.backend }

// Viewport returns the current viewport size.
func (c *Context) Viewport() geom.Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

// SetViewport resizes the viewport. It takes effect on the next frame.
func (c *Context) SetViewport(width, height float32) {
	c.mu.Lock()
	c.viewport = geom.V2(width, height)
	c.mu.Unlock()
}

// Edit runs fn with exclusive access to the tree. The latest frame can no
// longer be painted or hit tested afterwards; begin a new one.
func (c *Context) Edit(fn func(t *tree.Tree) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.latest = nil
	return fn(c.tree)
}

// HitTest returns the topmost node at p in the latest frame.
func (c *Context) HitTest(p geom.Vec2) (fragment.NodeID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.latest == nil {
		return 0, false
	}
	return c.tree.HitTest(p)
}

// DispatchMouse routes a mouse event to the node under its position.
func (c *Context) DispatchMouse(typ tree.EventType, ev tree.MouseEvent) (fragment.NodeID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.latest == nil {
		return 0, false
	}
	return c.tree.DispatchMouse(typ, ev)
}

// DispatchKey routes a key event to the focused node.
func (c *Context) DispatchKey(ev tree.KeyEvent) fragment.NodeID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0
	}
	return c.tree.DispatchKey(ev)
}

// Frame is a frame that has been updated and may be painted. At most
// Config.FramesInFlight frames are outstanding; Done frees the slot once
// the frame's draw calls have finished executing.
type Frame struct {
	c        *Context
	num      uint64
	viewport geom.Vec2
	done     atomic.Bool
}

// Number returns the frame counter value the frame was updated with.
func (f *Frame) Number() uint64 { return f.num }

// Viewport returns the viewport the frame was laid out in.
func (f *Frame) Viewport() geom.Vec2 { return f.viewport }

// Paint encodes the frame. Only the most recently begun frame can be
// painted.
func (f *Frame) Paint(enc fragment.Encoder) error {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	return f.c.paintLocked(f, enc)
}

// Done releases the frame's slot. It is safe to call more than once.
func (f *Frame) Done() {
	if f.done.CompareAndSwap(false, true) {
		f.c.frames.Release(1)
	}
}

func (c *Context) paintLocked(f *Frame, enc fragment.Encoder) error {
	switch {
	case c.closed:
		return ErrClosed
	case f.done.Load():
		return fmt.Errorf("%w: frame %d", ErrFrameDone, f.num)
	case c.latest != f:
		return fmt.Errorf("%w: frame %d", ErrStaleFrame, f.num)
	}
	return c.tree.Paint(enc)
}

// BeginFrame waits until fewer than Config.FramesInFlight frames are
// outstanding, then runs every layout phase over the tree. A failed update
// drops the frame: its slot is released and the error returned.
func (c *Context) BeginFrame(ctx context.Context) (*Frame, error) {
	if err := c.frames.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("ui: wait for frame slot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.frames.Release(1)
		return nil, ErrClosed
	}

	num := c.next
	c.next++
	env := &tree.Env{
		Frame:          num,
		FramesInFlight: c.cfg.FramesInFlight,
		Viewport:       c.viewport,
		Buffers:        c.alloc,
		Glyphs:         c.glyphs,
		Atlas:          c.atlas,
		Logger:         c.log(),
	}
	if err := c.tree.Update(env); err != nil {
		c.latest = nil
		c.frames.Release(1)
		c.log().Warn("ui: frame dropped", "frame", num, "err", err)
		return nil, fmt.Errorf("ui: frame %d: %w", num, err)
	}

	f := &Frame{c: c, num: num, viewport: c.viewport}
	c.latest = f
	return f, nil
}

// Render updates a frame and draws it into view with the GPU backend. It
// returns the number of draw calls.
func (c *Context) Render(ctx context.Context, view hal.TextureView) (int, error) {
	if c.backend == nil {
		return 0, ErrNoBackend
	}
	f, err := c.BeginFrame(ctx)
	if err != nil {
		return 0, err
	}
	// Backend.Render waits for the GPU, so the slot is free again on
	// return.
	defer f.Done()

	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.backend.Render(view, c.clear, func(enc fragment.Encoder) error {
		return c.paintLocked(f, enc)
	})
	if err != nil {
		c.log().Warn("ui: render failed", "frame", f.num, "err", err)
		return 0, err
	}
	return n, nil
}

// Snapshot updates a frame and draws it onto a canvas.
func (c *Context) Snapshot(ctx context.Context) (*snapshot.Encoder, error) {
	f, err := c.BeginFrame(ctx)
	if err != nil {
		return nil, err
	}
	defer f.Done()
	return snapshot.Capture(f, f.viewport, c.clear)
}

// Close releases every element's buffers, the glyph atlas and the GPU
// backend. Frames still outstanding must not be painted afterwards.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.latest = nil
	c.mu.Unlock()

	unregister(c)
	return c.destroy()
}

func (c *Context) destroy() error {
	var errs []error
	if c.tree != nil {
		c.tree.Walk(func(id fragment.NodeID, el tree.Element) {
			if err := el.Release(); err != nil {
				errs = append(errs, fmt.Errorf("ui: release node %d: %w", id, err))
			}
		})
		c.tree.Close()
	}
	if c.atlas != nil {
		if err := c.atlas.Free(); err != nil {
			errs = append(errs, fmt.Errorf("ui: free glyph atlas: %w", err))
		}
	}
	if c.backend != nil {
		c.backend.Destroy()
	}
	if c.ownAlloc != nil {
		c.ownAlloc.Close()
	}
	return errors.Join(errs...)
}
