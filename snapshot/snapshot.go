// Package snapshot draws a painted tree with tdewolff/canvas, for headless
// inspection as PDF or as a raster image.
//
// One canvas unit is one layout pixel. Glyphs are filled from the
// flattened contours carried by text atoms, so a snapshot shows exactly the
// geometry the GPU would rasterize.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/glyph"
)

// ErrNotFinalized is returned for draw calls without finalized data.
var ErrNotFinalized = errors.New("snapshot: draw call has no finalized node")

var transparent = color.RGBA{}

// Encoder is a fragment.Encoder drawing onto a canvas.
type Encoder struct {
	c     *canvas.Canvas
	ctx   *canvas.Context
	size  geom.Vec2
	draws int
}

var _ fragment.Encoder = (*Encoder)(nil)

// New returns an Encoder for a viewport of the given size, cleared to
// background.
func New(viewport geom.Vec2, background fragment.Color) *Encoder {
	c := canvas.New(float64(viewport.X), float64(viewport.Y))
	ctx := canvas.NewContext(c)
	// Top-left origin, y down, like the layout.
	ctx.SetCoordSystem(canvas.CartesianIV)
	if background.A > 0 {
		ctx.SetFillColor(background.NRGBA())
		ctx.SetStrokeColor(transparent)
		ctx.DrawPath(0, 0, canvas.Rectangle(float64(viewport.X), float64(viewport.Y)))
	}
	return &Encoder{c: c, ctx: ctx, size: viewport}
}

// Draws returns the number of draw calls encoded.
func (e *Encoder) Draws() int { return e.draws }

// Canvas returns the canvas drawn so far.
func (e *Encoder) Canvas() *canvas.Canvas { return e.c }

// Draw implements fragment.Encoder.
func (e *Encoder) Draw(dc fragment.DrawCall) error {
	f := dc.Finalized
	if f == nil {
		return fmt.Errorf("%w: node %d", ErrNotFinalized, dc.Node)
	}
	switch u := f.Uniforms.(type) {
	case fragment.DivUniforms:
		e.drawDiv(u)
	case fragment.TextUniforms:
		e.drawText(u, f)
	case fragment.ImageUniforms:
		if err := e.drawImage(u); err != nil {
			return fmt.Errorf("snapshot: node %d: %w", dc.Node, err)
		}
	default:
		return fmt.Errorf("snapshot: node %d: unsupported uniforms %T", dc.Node, f.Uniforms)
	}
	e.draws++
	return nil
}

func box(center, half geom.Vec2) (x, y, w, h float64) {
	return float64(center.X - half.X), float64(center.Y - half.Y), float64(2 * half.X), float64(2 * half.Y)
}

func (e *Encoder) drawDiv(u fragment.DivUniforms) {
	x, y, w, h := box(u.RectCenter, u.HalfExtent)
	r := min(float64(u.CornerRadius), w/2, h/2)

	if u.Color.A > 0 {
		e.ctx.SetFillColor(u.Color.NRGBA())
		e.ctx.SetStrokeColor(transparent)
		e.ctx.DrawPath(x, y, canvas.RoundedRectangle(w, h, r))
	}
	if bw := float64(u.BorderWidth); bw > 0 && u.BorderColor.A > 0 {
		// Strokes are centred on the path; inset by half the width so the
		// border stays inside the box.
		e.ctx.SetFillColor(transparent)
		e.ctx.SetStrokeColor(u.BorderColor.NRGBA())
		e.ctx.SetStrokeWidth(bw)
		e.ctx.DrawPath(x+bw/2, y+bw/2, canvas.RoundedRectangle(w-bw, h-bw, max(r-bw/2, 0)))
	}
}

// glyphPath converts the flattened contours of g to a closed canvas path.
func glyphPath(g *glyph.Glyph) *canvas.Path {
	p := &canvas.Path{}
	for _, c := range g.Contours {
		pts := g.Points[c.Offset : c.Offset+c.Size]
		if len(pts) < 3 {
			continue
		}
		p.MoveTo(float64(pts[0].X), float64(pts[0].Y))
		for _, pt := range pts[1:] {
			p.LineTo(float64(pt.X), float64(pt.Y))
		}
		p.Close()
	}
	return p
}

func (e *Encoder) drawText(u fragment.TextUniforms, f *fragment.Finalized) {
	e.ctx.SetFillColor(u.Color.NRGBA())
	e.ctx.SetStrokeColor(transparent)
	for i, a := range f.Atomized.Atoms {
		if a.Glyph == nil || len(a.Glyph.Contours) == 0 || i >= len(f.Placed.Placements) {
			continue
		}
		pen := f.Placed.Placements[i].Position()
		e.ctx.DrawPath(float64(pen.X), float64(pen.Y+u.Baseline), glyphPath(a.Glyph))
	}
}

func (e *Encoder) drawImage(u fragment.ImageUniforms) error {
	if u.Image == nil {
		return errors.New("image has no pixels")
	}
	x, y, w, _ := box(u.RectCenter, u.HalfExtent)
	if w <= 0 {
		return nil
	}
	dpmm := float64(u.Image.Bounds().Dx()) / w
	if dpmm <= 0 {
		dpmm = 1
	}
	e.ctx.DrawImage(x, y, u.Image, canvas.DPMM(dpmm))
	return nil
}

// WritePDF writes the canvas as a single page PDF.
func (e *Encoder) WritePDF(w io.Writer) error {
	writer := pdf.New(w, float64(e.size.X), float64(e.size.Y), nil)
	e.c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("snapshot: write pdf: %w", err)
	}
	return nil
}

// Image rasterizes the canvas at scale pixels per layout pixel.
func (e *Encoder) Image(scale float64) image.Image {
	if scale <= 0 {
		scale = 1
	}
	return rasterizer.Draw(e.c, canvas.DPMM(scale), canvas.DefaultColorSpace)
}

// Painter is implemented by *tree.Tree.
type Painter interface {
	Paint(enc fragment.Encoder) error
}

// Capture paints p onto a new Encoder.
func Capture(p Painter, viewport geom.Vec2, background fragment.Color) (*Encoder, error) {
	e := New(viewport, background)
	if err := p.Paint(e); err != nil {
		return nil, err
	}
	return e, nil
}
