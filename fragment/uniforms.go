package fragment

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/gogpu/ui/geom"
)

// Kind is the element variant tag. It also selects the render pipeline.
type Kind uint8

const (
	KindDiv Kind = iota
	KindText
	KindImage

	NumKinds = int(iota)
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindDiv:
		return "div"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Uniforms is the per-node uniform payload. It is implemented only by
// DivUniforms, TextUniforms and ImageUniforms; switch on the concrete type
// or on Kind.
type Uniforms interface {
	Kind() Kind

	// Bytes returns the payload in the WGSL uniform layout of the kind's
	// shader.
	Bytes() []byte

	uniforms()
}

// DivUniforms styles a box.
//
//	struct DivUniforms {
//	    color: vec4<f32>,
//	    border_color: vec4<f32>,
//	    rect_center: vec2<f32>,
//	    half_extent: vec2<f32>,
//	    corner_radius: f32,
//	    border_width: f32,
//	    viewport: vec2<f32>,
//	}
type DivUniforms struct {
	Color        Color
	BorderColor  Color
	RectCenter   geom.Vec2
	HalfExtent   geom.Vec2
	CornerRadius float32
	BorderWidth  float32
	Viewport     geom.Vec2
}

// DivUniformsSize is the byte size of DivUniforms.Bytes.
const DivUniformsSize = 64

func (DivUniforms) Kind() Kind { return KindDiv }
func (DivUniforms) uniforms()  {}

// Bytes implements Uniforms.
func (u DivUniforms) Bytes() []byte {
	return PackFloats(
		u.Color.R, u.Color.G, u.Color.B, u.Color.A,
		u.BorderColor.R, u.BorderColor.G, u.BorderColor.B, u.BorderColor.A,
		u.RectCenter.X, u.RectCenter.Y,
		u.HalfExtent.X, u.HalfExtent.Y,
		u.CornerRadius, u.BorderWidth,
		u.Viewport.X, u.Viewport.Y,
	)
}

// TextUniforms styles a run of glyph atoms.
//
//	struct TextUniforms {
//	    color: vec4<f32>,
//	    viewport: vec2<f32>,
//	    baseline: f32,
//	    _pad: f32,
//	}
type TextUniforms struct {
	Color    Color
	Viewport geom.Vec2

	// Baseline is the distance from the top of an atom box to the glyph
	// origin.
	Baseline float32

	// Size and Font identify the glyphs for CPU-side encoders. They are
	// not part of Bytes.
	Size float32
	Font string
}

// TextUniformsSize is the byte size of TextUniforms.Bytes.
const TextUniformsSize = 32

func (TextUniforms) Kind() Kind { return KindText }
func (TextUniforms) uniforms()  {}

// Bytes implements Uniforms.
func (u TextUniforms) Bytes() []byte {
	return PackFloats(
		u.Color.R, u.Color.G, u.Color.B, u.Color.A,
		u.Viewport.X, u.Viewport.Y,
		u.Baseline, 0,
	)
}

// ImageUniforms places a bitmap.
//
//	struct ImageUniforms {
//	    rect_center: vec2<f32>,
//	    half_extent: vec2<f32>,
//	    image_size: vec2<f32>,
//	    viewport: vec2<f32>,
//	    corner_radius: f32,
//	    opacity: f32,
//	}
type ImageUniforms struct {
	RectCenter   geom.Vec2
	HalfExtent   geom.Vec2
	ImageSize    geom.Vec2
	Viewport     geom.Vec2
	CornerRadius float32
	Opacity      float32

	// Image is the decoded bitmap for CPU-side encoders. It is not part
	// of Bytes.
	Image image.Image
}

// ImageUniformsSize is the byte size of ImageUniforms.Bytes.
const ImageUniformsSize = 48

func (ImageUniforms) Kind() Kind { return KindImage }
func (ImageUniforms) uniforms()  {}

// Bytes implements Uniforms.
func (u ImageUniforms) Bytes() []byte {
	return PackFloats(
		u.RectCenter.X, u.RectCenter.Y,
		u.HalfExtent.X, u.HalfExtent.Y,
		u.ImageSize.X, u.ImageSize.Y,
		u.Viewport.X, u.Viewport.Y,
		u.CornerRadius, u.Opacity,
		0, 0,
	)
}

// PackFloats encodes vs as little-endian float32s.
func PackFloats(vs ...float32) []byte {
	out := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

// PackUint32s encodes vs as little-endian uint32s.
func PackUint32s(vs ...uint32) []byte {
	out := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(out[4*i:], v)
	}
	return out
}
