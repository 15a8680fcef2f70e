package ui

import (
	"log/slog"

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/glyph"
	"github.com/gogpu/ui/gpu"
)

// Option configures a Context during creation.
//
// Example:
//
//	// Host buffers, default configuration
//	c, err := ui.NewContext(root)
//
//	// GPU rendering on an opened device
//	dev, _ := gpu.Open(nil)
//	c, err := ui.NewContext(root, ui.WithDevice(dev), ui.WithConfig(cfg))
type Option func(*options)

// options holds optional configuration for Context creation.
type options struct {
	cfg     Config
	alloc   buffer.Allocator
	device  *gpu.Device
	spirv   bool
	fonts   []fontSource
	logger  *slog.Logger
	workers *int
}

type fontSource struct {
	name string
	face glyph.Face
}

// defaultOptions returns the default context options.
func defaultOptions() options {
	return options{cfg: DefaultConfig()}
}

// WithConfig replaces the configuration. Zero fields take their defaults.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithAllocator makes the Context allocate element buffers from a instead
// of creating its own. The caller keeps ownership of a.
func WithAllocator(a buffer.Allocator) Option {
	return func(o *options) {
		o.alloc = a
	}
}

// WithDevice renders on dev: element buffers live on the device and the
// Context builds a gpu.Backend for it. The caller keeps ownership of dev.
func WithDevice(dev *gpu.Device) Option {
	return func(o *options) {
		o.device = dev
	}
}

// WithSPIRV makes the backend load SPIR-V compiled with naga instead of
// WGSL source.
func WithSPIRV() Option {
	return func(o *options) {
		o.spirv = true
	}
}

// WithFontSource registers face under name before the configured font
// files are loaded.
func WithFontSource(name string, face glyph.Face) Option {
	return func(o *options) {
		o.fonts = append(o.fonts, fontSource{name: name, face: face})
	}
}

// WithLogger gives the Context its own logger. Without it the Context
// follows the package logger set with SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithWorkers overrides Config.Workers.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = &n
	}
}
