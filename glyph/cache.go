package glyph

import (
	"hash/fnv"
	"log/slog"
	"math"

	"github.com/gogpu/ui/cache"
	"github.com/gogpu/ui/internal/logging"
)

// Key identifies one processed glyph.
type Key struct {
	Font string
	Size float32
	Char rune
}

func hashKey(k Key) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k.Font))
	var b [8]byte
	size := math.Float32bits(k.Size)
	for i := 0; i < 4; i++ {
		b[i] = byte(size >> (8 * i))
		b[4+i] = byte(uint32(k.Char) >> (8 * i))
	}
	_, _ = h.Write(b[:])
	return h.Sum64()
}

type cached struct {
	glyph *Glyph
	err   error
}

// Cache is a read-through cache of processed glyphs.
//
// Each key is computed at most once for the lifetime of the Cache; failures
// are remembered as well so a missing character is not looked up again.
type Cache struct {
	lib     *Library
	proc    *Processor
	entries *cache.ShardedCache[Key, cached]
	logger  *slog.Logger
}

// NewCache creates a cache reading faces from lib and flattening with proc.
func NewCache(lib *Library, proc *Processor) *Cache {
	if proc == nil {
		proc = &Processor{}
	}
	return &Cache{
		lib:     lib,
		proc:    proc,
		entries: cache.NewSharded[Key, cached](cache.Unbounded, hashKey),
		logger:  logging.Nop(),
	}
}

// SetLogger sets the logger used for cache misses.
func (c *Cache) SetLogger(l *slog.Logger) {
	c.logger = logging.OrNop(l)
}

// Glyph returns the processed glyph for (font, size, r), computing it on
// first use.
func (c *Cache) Glyph(font string, size float32, r rune) (*Glyph, error) {
	k := Key{Font: font, Size: size, Char: r}
	v := c.entries.GetOrCreate(k, func() cached {
		g, err := c.load(k)
		if err != nil {
			c.logger.Debug("glyph: load failed", "font", font, "size", size, "char", string(r), "err", err)
		}
		return cached{glyph: g, err: err}
	})
	return v.glyph, v.err
}

func (c *Cache) load(k Key) (*Glyph, error) {
	if k.Size <= 0 {
		return nil, ErrInvalidSize
	}
	face, err := c.lib.Face(k.Font)
	if err != nil {
		return nil, err
	}
	o, err := face.Outline(k.Char, k.Size)
	if err != nil {
		return nil, err
	}
	return c.proc.Process(o)
}

// Stats returns the underlying cache counters.
func (c *Cache) Stats() cache.Stats {
	return c.entries.Stats()
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	return c.entries.Len()
}
