package glyph

import (
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/ui/geom"
)

// onCurveFlag is bit 0 of a TrueType point flag.
const onCurveFlag = 0x01

// TrueTypeFace reads TrueType outlines with github.com/golang/freetype.
// Unlike the segment-based faces it reports the font's own point tags,
// including runs of consecutive off-curve points.
type TrueTypeFace struct {
	name string
	font *truetype.Font
}

// NewTrueTypeFace parses TrueType data.
func NewTrueTypeFace(name string, data []byte) (*TrueTypeFace, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return &TrueTypeFace{name: name, font: f}, nil
}

// Outline implements Face.
func (f *TrueTypeFace) Outline(r rune, size float32) (*Outline, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	idx := f.font.Index(r)
	if idx == 0 {
		return nil, &NotFoundError{Font: f.name, Char: r}
	}

	var gb truetype.GlyphBuf
	if err := gb.Load(f.font, fixed.Int26_6(size*64), idx, font.HintingNone); err != nil {
		return nil, err
	}

	o := &Outline{
		Points:  make([]geom.Vec2, len(gb.Points)),
		Tags:    make([]Tag, len(gb.Points)),
		Ends:    append([]int(nil), gb.Ends...),
		Advance: fixedFloat(gb.AdvanceWidth),
	}
	for i, p := range gb.Points {
		// freetype reports y up.
		o.Points[i] = geom.Vec2{X: fixedFloat(p.X), Y: -fixedFloat(p.Y)}
		if p.Flags&onCurveFlag != 0 {
			o.Tags[i] = TagOnCurve
		} else {
			o.Tags[i] = TagConic
		}
	}
	return o, nil
}
