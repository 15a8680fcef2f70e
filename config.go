package ui

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/glyph"
	"github.com/gogpu/ui/tessellate"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("ui: invalid config")

// ErrConfigFormat is returned by LoadConfig for unrecognised extensions.
var ErrConfigFormat = errors.New("ui: unsupported config format")

// Config holds the settings of a Context. It is read from TOML or YAML with
// LoadConfig; the zero value of every field selects its default.
type Config struct {
	Viewport ViewportConfig `toml:"viewport" yaml:"viewport"`

	// FramesInFlight bounds the frames begun but not yet done, and sizes
	// every frame-buffered ring.
	FramesInFlight int `toml:"frames_in_flight" yaml:"frames_in_flight"`

	// Workers is the worker count of the parallel phases. Zero uses
	// GOMAXPROCS and one runs every phase on the caller.
	Workers int `toml:"workers" yaml:"workers"`

	// BufferBudget caps the bytes the allocator may hold. Zero is
	// unlimited.
	BufferBudget int `toml:"buffer_budget" yaml:"buffer_budget"`

	Tessellation TessellationConfig `toml:"tessellation" yaml:"tessellation"`
	Fonts        FontConfig         `toml:"fonts" yaml:"fonts"`

	// Clear is the background color, in any form fragment.ParseColor
	// accepts.
	Clear string `toml:"clear" yaml:"clear"`
}

// ViewportConfig is the initial viewport size in pixels.
type ViewportConfig struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

// TessellationConfig controls how glyph curves are flattened.
type TessellationConfig struct {
	Tolerance float32 `toml:"tolerance" yaml:"tolerance"`
	MaxDepth  int     `toml:"max_depth" yaml:"max_depth"`
	// Resolution > 0 samples every curve at a fixed number of steps
	// instead of flattening adaptively.
	Resolution int `toml:"resolution" yaml:"resolution"`
}

// FontConfig lists the font files to load.
type FontConfig struct {
	// Parser is "sfnt", "freetype" or "gotext".
	Parser string `toml:"parser" yaml:"parser"`
	// Default names the face used when a style names no font. The first
	// loaded face is used when empty.
	Default string `toml:"default" yaml:"default"`
	// Files maps font names to file paths.
	Files map[string]string `toml:"files" yaml:"files"`
}

// Defaults applied by DefaultConfig.
const (
	DefaultWidth          = 800
	DefaultHeight         = 600
	DefaultFramesInFlight = 3
)

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Viewport:       ViewportConfig{Width: DefaultWidth, Height: DefaultHeight},
		FramesInFlight: DefaultFramesInFlight,
		Tessellation: TessellationConfig{
			Tolerance: tessellate.DefaultTolerance,
			MaxDepth:  tessellate.DefaultMaxDepth,
		},
		Fonts: FontConfig{Parser: string(glyph.DefaultParser)},
		Clear: "white",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Viewport.Width == 0 {
		c.Viewport.Width = d.Viewport.Width
	}
	if c.Viewport.Height == 0 {
		c.Viewport.Height = d.Viewport.Height
	}
	if c.FramesInFlight == 0 {
		c.FramesInFlight = d.FramesInFlight
	}
	if c.Tessellation.Tolerance == 0 {
		c.Tessellation.Tolerance = d.Tessellation.Tolerance
	}
	if c.Tessellation.MaxDepth == 0 {
		c.Tessellation.MaxDepth = d.Tessellation.MaxDepth
	}
	if c.Fonts.Parser == "" {
		c.Fonts.Parser = d.Fonts.Parser
	}
	if c.Clear == "" {
		c.Clear = d.Clear
	}
	return c
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Viewport.Width < 0 || c.Viewport.Height < 0:
		return fmt.Errorf("%w: negative viewport %dx%d", ErrInvalidConfig, c.Viewport.Width, c.Viewport.Height)
	case c.FramesInFlight < 0:
		return fmt.Errorf("%w: frames_in_flight %d", ErrInvalidConfig, c.FramesInFlight)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	case c.BufferBudget < 0:
		return fmt.Errorf("%w: buffer_budget %d", ErrInvalidConfig, c.BufferBudget)
	case c.Tessellation.Tolerance < 0:
		return fmt.Errorf("%w: tessellation.tolerance %g", ErrInvalidConfig, c.Tessellation.Tolerance)
	case c.Tessellation.MaxDepth < 0 || c.Tessellation.MaxDepth > tessellate.MaxDepthLimit:
		return fmt.Errorf("%w: tessellation.max_depth %d not in [0, %d]", ErrInvalidConfig, c.Tessellation.MaxDepth, tessellate.MaxDepthLimit)
	case c.Tessellation.Resolution < 0:
		return fmt.Errorf("%w: tessellation.resolution %d", ErrInvalidConfig, c.Tessellation.Resolution)
	}
	switch glyph.Parser(strings.ToLower(c.Fonts.Parser)) {
	case "", glyph.ParserSFNT, glyph.ParserFreeType, glyph.ParserGoText:
	default:
		return fmt.Errorf("%w: fonts.parser %q", ErrInvalidConfig, c.Fonts.Parser)
	}
	if c.Clear != "" {
		if _, err := fragment.ParseColor(c.Clear); err != nil {
			return fmt.Errorf("%w: clear: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// ViewportSize returns the viewport as a vector.
func (c Config) ViewportSize() geom.Vec2 {
	return geom.V2(float32(c.Viewport.Width), float32(c.Viewport.Height))
}

// ClearColor returns the parsed Clear color, or white if it does not parse.
func (c Config) ClearColor() fragment.Color {
	col, err := fragment.ParseColor(c.Clear)
	if err != nil {
		return fragment.White
	}
	return col
}

// Processor returns the glyph processor described by the tessellation
// settings.
func (c Config) Processor() *glyph.Processor {
	return &glyph.Processor{
		Flattener: tessellate.Flattener{
			Tolerance: c.Tessellation.Tolerance,
			MaxDepth:  c.Tessellation.MaxDepth,
		},
		Resolution: c.Tessellation.Resolution,
	}
}

// LoadConfig reads a TOML (.toml) or YAML (.yaml, .yml) file. Fields the
// file leaves out keep their defaults, and relative font paths resolve
// against the file's directory.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("ui: load config: %w", err)
	}
	cfg, err := decodeConfig(filepath.Ext(path), data)
	if err != nil {
		return Config{}, fmt.Errorf("ui: load config %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for name, p := range cfg.Fonts.Files {
		if !filepath.IsAbs(p) {
			cfg.Fonts.Files[name] = filepath.Join(dir, p)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(ext string, data []byte) (Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrConfigFormat, ext)
	}
	return cfg, nil
}
