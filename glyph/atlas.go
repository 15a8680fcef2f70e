package glyph

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/ui/buffer"
	"github.com/gogpu/ui/geom"
)

// AtlasEntry locates one glyph's contours in an Atlas.
type AtlasEntry struct {
	FirstContour uint32
	ContourCount uint32
	Bounds       geom.Rect
}

// Atlas stores the flattened contours of every glyph in use in two shared
// buffers so that text elements only upload per-instance records.
//
//	points:   array<vec2<f32>>
//	contours: array<vec2<u32>>  // (first point, point count)
//
// Each glyph is uploaded once for the lifetime of the Atlas. Atlas is safe
// for concurrent use.
type Atlas struct {
	mu    sync.Mutex
	alloc buffer.Allocator

	points   buffer.Handle
	contours buffer.Handle

	pointData   []byte
	contourData []byte
	numPoints   uint32
	numContours uint32

	entries map[*Glyph]AtlasEntry
}

const initialAtlasBytes = 16 << 10

// NewAtlas allocates the atlas buffers from a.
func NewAtlas(a buffer.Allocator) (*Atlas, error) {
	points, err := a.Allocate(initialAtlasBytes)
	if err != nil {
		return nil, fmt.Errorf("glyph: atlas points: %w", err)
	}
	contours, err := a.Allocate(initialAtlasBytes)
	if err != nil {
		_ = a.Free(points)
		return nil, fmt.Errorf("glyph: atlas contours: %w", err)
	}
	return &Atlas{
		alloc:    a,
		points:   points,
		contours: contours,
		entries:  make(map[*Glyph]AtlasEntry),
	}, nil
}

// Buffers returns the point and contour buffer handles.
func (a *Atlas) Buffers() (points, contours buffer.Handle) {
	return a.points, a.contours
}

// Len returns the number of glyphs stored.
func (a *Atlas) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Add uploads g if it is not stored yet and returns its entry.
func (a *Atlas) Add(g *Glyph) (AtlasEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.entries[g]; ok {
		return e, nil
	}

	e := AtlasEntry{
		FirstContour: a.numContours,
		ContourCount: uint32(len(g.Contours)),
		Bounds:       g.Bounds,
	}

	pointsFrom, contoursFrom := len(a.pointData), len(a.contourData)
	le := binary.LittleEndian
	for _, p := range g.Points {
		a.pointData = le.AppendUint32(a.pointData, math.Float32bits(p.X))
		a.pointData = le.AppendUint32(a.pointData, math.Float32bits(p.Y))
	}
	for _, c := range g.Contours {
		a.contourData = le.AppendUint32(a.contourData, a.numPoints+uint32(c.Offset))
		a.contourData = le.AppendUint32(a.contourData, uint32(c.Size))
	}

	if err := a.upload(a.points, a.pointData, pointsFrom); err != nil {
		a.pointData = a.pointData[:pointsFrom]
		a.contourData = a.contourData[:contoursFrom]
		return AtlasEntry{}, err
	}
	if err := a.upload(a.contours, a.contourData, contoursFrom); err != nil {
		a.pointData = a.pointData[:pointsFrom]
		a.contourData = a.contourData[:contoursFrom]
		return AtlasEntry{}, err
	}

	a.numPoints += uint32(len(g.Points))
	a.numContours += e.ContourCount
	a.entries[g] = e
	return e, nil
}

// upload writes data[from:] to h. Growing a buffer discards its contents,
// so after a resize the whole of data is written again.
func (a *Atlas) upload(h buffer.Handle, data []byte, from int) error {
	if from == len(data) {
		return nil
	}
	b, err := a.alloc.Get(h)
	if err != nil {
		return err
	}
	if len(data) > b.Size() {
		from = 0
	}
	if err := buffer.Write(a.alloc, h, from, data[from:]); err != nil {
		return fmt.Errorf("glyph: atlas upload: %w", err)
	}
	return nil
}

// Free releases the atlas buffers.
func (a *Atlas) Free() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = make(map[*Glyph]AtlasEntry)
	a.pointData, a.contourData = nil, nil
	a.numPoints, a.numContours = 0, 0
	err1 := a.alloc.Free(a.points)
	err2 := a.alloc.Free(a.contours)
	if err1 != nil {
		return err1
	}
	return err2
}
