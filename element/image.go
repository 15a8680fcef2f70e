package element

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"
	"os"
	"sync"

	_ "golang.org/x/image/bmp" // register BMP
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/fragment"
	"github.com/gogpu/ui/geom"
	"github.com/gogpu/ui/layout"
	"github.com/gogpu/ui/tree"
)

// MaxImageSide bounds the uploaded bitmap. Larger images are downscaled
// before upload.
const MaxImageSide = 4096

// ErrNoImageSource is returned by images built without a source.
var ErrNoImageSource = errors.New("element: image has no source")

// Image draws a bitmap stretched over its box.
//
// The intrinsic size is read from the file header the first time the image
// is measured without an explicit size. The pixels are decoded once, on the
// first Atomize, and uploaded once it succeeds; a failed upload is retried
// on the next frame.
type Image struct {
	base
	open func() (io.ReadCloser, error)

	// Opacity multiplies the bitmap alpha. Zero means opaque.
	Opacity float32

	cfgOnce sync.Once
	cfg     image.Config
	cfgErr  error

	decodeOnce sync.Once
	img        *image.NRGBA
	decodeErr  error

	pixMu  sync.Mutex
	alloc  buffer.Allocator
	pixels buffer.Handle
}

// NewImageFile returns an Image reading path.
func NewImageFile(path string, style Style) *Image {
	return &Image{
		base: base{style: style},
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// NewImageBytes returns an Image decoding data.
func NewImageBytes(data []byte, style Style) *Image {
	return &Image{
		base: base{style: style},
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// NewImage returns an Image showing an already decoded bitmap.
func NewImage(img image.Image, style Style) *Image {
	b := img.Bounds()
	im := &Image{base: base{style: style}}
	im.cfgOnce.Do(func() {
		im.cfg = image.Config{Width: b.Dx(), Height: b.Dy()}
	})
	im.img = toNRGBA(img)
	return im
}

// Kind implements tree.Element.
func (im *Image) Kind() fragment.Kind { return fragment.KindImage }

// IntrinsicSize returns the bitmap size, reading the header on first use.
func (im *Image) IntrinsicSize() (geom.Vec2, error) {
	im.cfgOnce.Do(func() {
		if im.open == nil {
			im.cfgErr = ErrNoImageSource
			return
		}
		rc, err := im.open()
		if err != nil {
			im.cfgErr = err
			return
		}
		defer rc.Close()
		im.cfg, _, im.cfgErr = image.DecodeConfig(rc)
	})
	if im.cfgErr != nil {
		return geom.Vec2{}, fmt.Errorf("element: image size: %w", im.cfgErr)
	}
	return geom.V2(float32(im.cfg.Width), float32(im.cfg.Height)), nil
}

// Measure implements tree.Element. A missing dimension follows the
// intrinsic aspect ratio; with neither set the intrinsic size is used.
func (im *Image) Measure(_ *tree.Env, _ fragment.NodeID, parent geom.Vec2) (fragment.Measured, error) {
	im.parent = parent
	w := im.style.Width.Resolve(parent.X)
	h := im.style.Height.Resolve(parent.Y)
	if w.Set && h.Set {
		return fragment.Measured{Width: w.Value, Height: h.Value}, nil
	}

	size, err := im.IntrinsicSize()
	if err != nil {
		return fragment.Measured{}, err
	}
	switch {
	case w.Set && size.X > 0:
		h = layout.Px(w.Value * size.Y / size.X)
	case h.Set && size.Y > 0:
		w = layout.Px(h.Value * size.X / size.Y)
	default:
		w, h = layout.Px(size.X), layout.Px(size.Y)
	}
	return fragment.Measured{Width: w.Or(0), Height: h.Or(0)}, nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// fit downscales img so neither side exceeds MaxImageSide.
func fit(img *image.NRGBA) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= MaxImageSide && h <= MaxImageSide {
		return img
	}
	scale := float64(MaxImageSide) / float64(max(w, h))
	dst := image.NewNRGBA(image.Rect(0, 0, max(int(float64(w)*scale), 1), max(int(float64(h)*scale), 1)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// decode reads and downscales the bitmap, once. Decode errors are final.
func (im *Image) decode() error {
	im.decodeOnce.Do(func() {
		if im.img == nil {
			if im.open == nil {
				im.decodeErr = ErrNoImageSource
				return
			}
			rc, err := im.open()
			if err != nil {
				im.decodeErr = err
				return
			}
			defer rc.Close()
			src, _, err := image.Decode(rc)
			if err != nil {
				im.decodeErr = err
				return
			}
			im.img = toNRGBA(src)
		}
		im.img = fit(im.img)
	})
	return im.decodeErr
}

// upload stores the pixels unless a previous frame already did. Allocation
// failures are not remembered, so the upload is retried next frame.
func (im *Image) upload(env *tree.Env) error {
	if err := im.decode(); err != nil {
		return fmt.Errorf("element: image pixels: %w", err)
	}

	im.pixMu.Lock()
	defer im.pixMu.Unlock()
	if im.pixels != buffer.InvalidHandle {
		return nil
	}
	h, err := env.Buffers.Allocate(max(len(im.img.Pix), 4))
	if err != nil {
		return fmt.Errorf("element: image pixels: %w", err)
	}
	if err := buffer.Write(env.Buffers, h, 0, im.img.Pix); err != nil {
		_ = env.Buffers.Free(h)
		return fmt.Errorf("element: image pixels: %w", err)
	}
	im.alloc, im.pixels = env.Buffers, h
	return nil
}

// Atomize implements tree.Element.
func (im *Image) Atomize(env *tree.Env, m fragment.Measured) (fragment.Atomized, error) {
	if env.Buffers == nil {
		return fragment.Atomized{}, ErrNoAllocator
	}
	if err := im.upload(env); err != nil {
		return fragment.Atomized{}, err
	}
	return im.storage.quadAtom(env, geom.V2(m.Width, m.Height))
}

// Place implements tree.Element.
func (im *Image) Place(env *tree.Env, _ fragment.Atomized, r layout.Result) (fragment.Placed, error) {
	return im.storage.place(env, r)
}

// Finalize implements tree.Element.
func (im *Image) Finalize(env *tree.Env, s tree.Slots) (fragment.Finalized, error) {
	center, half := boxGeometry(s)
	opacity := im.Opacity
	if opacity <= 0 {
		opacity = 1
	}
	b := im.img.Bounds()
	return im.storage.finalize(env, s, fragment.ImageUniforms{
		RectCenter:   center,
		HalfExtent:   half,
		ImageSize:    geom.V2(float32(b.Dx()), float32(b.Dy())),
		Viewport:     env.Viewport,
		CornerRadius: im.style.CornerRadius,
		Opacity:      opacity,
		Image:        im.img,
	})
}

// Encode implements tree.Element.
func (im *Image) Encode(enc fragment.Encoder, f *fragment.Finalized) error {
	return enc.Draw(fragment.DrawCall{
		Node:          f.ID,
		Pipeline:      fragment.KindImage,
		Bindings:      []buffer.Handle{f.UniformBuffer, f.Atomized.Atoms[0].Buffer, im.pixels},
		VertexCount:   fragment.QuadVertices,
		InstanceCount: 1,
		Finalized:     f,
	})
}

// Release implements tree.Element.
func (im *Image) Release() error {
	var errs []error
	im.pixMu.Lock()
	if im.pixels != buffer.InvalidHandle {
		errs = append(errs, im.alloc.Free(im.pixels))
		im.pixels = buffer.InvalidHandle
	}
	im.pixMu.Unlock()
	errs = append(errs, im.storage.release())
	return errors.Join(errs...)
}
