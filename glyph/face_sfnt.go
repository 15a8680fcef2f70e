package glyph

import (
	"errors"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/ui/geom"
)

// SFNTFace reads outlines with golang.org/x/image/font/sfnt. It handles
// both TrueType and CFF fonts; CFF outlines yield cubic control points.
type SFNTFace struct {
	name string
	font *sfnt.Font
	bufs sync.Pool
}

// NewSFNTFace parses TrueType or OpenType data.
func NewSFNTFace(name string, data []byte) (*SFNTFace, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	return &SFNTFace{
		name: name,
		font: f,
		bufs: sync.Pool{New: func() any { return new(sfnt.Buffer) }},
	}, nil
}

// Outline implements Face.
func (f *SFNTFace) Outline(r rune, size float32) (*Outline, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	buf := f.bufs.Get().(*sfnt.Buffer)
	defer f.bufs.Put(buf)

	gid, err := f.font.GlyphIndex(buf, r)
	if err != nil {
		return nil, err
	}
	if gid == 0 {
		return nil, &NotFoundError{Font: f.name, Char: r}
	}

	ppem := fixed.Int26_6(size * 64)
	segs, err := f.font.LoadGlyph(buf, gid, ppem, nil)
	if err != nil {
		if errors.Is(err, sfnt.ErrNotFound) {
			return nil, &NotFoundError{Font: f.name, Char: r}
		}
		return nil, err
	}
	adv, err := f.font.GlyphAdvance(buf, gid, ppem, font.HintingNone)
	if err != nil {
		return nil, err
	}

	// sfnt already reports y down.
	var b outlineBuilder
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			b.moveTo(fixedPoint(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			b.lineTo(fixedPoint(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			b.quadTo(fixedPoint(s.Args[0]), fixedPoint(s.Args[1]))
		case sfnt.SegmentOpCubeTo:
			b.cubeTo(fixedPoint(s.Args[0]), fixedPoint(s.Args[1]), fixedPoint(s.Args[2]))
		}
	}
	return b.finish(fixedFloat(adv)), nil
}

func fixedFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func fixedPoint(p fixed.Point26_6) geom.Vec2 {
	return geom.Vec2{X: fixedFloat(p.X), Y: fixedFloat(p.Y)}
}
