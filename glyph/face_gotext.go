package glyph

import (
	"bytes"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"

	"github.com/gogpu/ui/geom"
)

// GoTextFace reads outlines with github.com/go-text/typesetting.
type GoTextFace struct {
	name string
	font *font.Font
	upem float32
}

// NewGoTextFace parses TrueType or OpenType data.
func NewGoTextFace(name string, data []byte) (*GoTextFace, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	upem := float32(face.Upem())
	if upem == 0 {
		upem = 1000
	}
	// font.Font is safe for concurrent use; a Face is built per call.
	return &GoTextFace{name: name, font: face.Font, upem: upem}, nil
}

// Outline implements Face.
func (f *GoTextFace) Outline(r rune, size float32) (*Outline, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	face := font.NewFace(f.font)
	gid, ok := face.NominalGlyph(r)
	if !ok {
		return nil, &NotFoundError{Font: f.name, Char: r}
	}
	scale := size / f.upem
	pt := func(p opentype.SegmentPoint) geom.Vec2 {
		return geom.Vec2{X: p.X * scale, Y: -p.Y * scale}
	}

	var b outlineBuilder
	if outline, ok := face.GlyphData(gid).(font.GlyphOutline); ok {
		for _, s := range outline.Segments {
			switch s.Op {
			case opentype.SegmentOpMoveTo:
				b.moveTo(pt(s.Args[0]))
			case opentype.SegmentOpLineTo:
				b.lineTo(pt(s.Args[0]))
			case opentype.SegmentOpQuadTo:
				b.quadTo(pt(s.Args[0]), pt(s.Args[1]))
			case opentype.SegmentOpCubeTo:
				b.cubeTo(pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2]))
			}
		}
	}
	return b.finish(face.HorizontalAdvance(gid) * scale), nil
}
