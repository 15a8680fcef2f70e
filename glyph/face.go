package glyph

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Face produces glyph outlines for one font.
//
// Implementations must be safe for concurrent use.
type Face interface {
	// Outline returns the outline of r at the given pixel size. A missing
	// glyph yields a *NotFoundError.
	Outline(r rune, size float32) (*Outline, error)
}

// Parser selects the font parsing library behind a Face.
type Parser string

const (
	// ParserSFNT parses with golang.org/x/image/font/sfnt.
	ParserSFNT Parser = "sfnt"
	// ParserFreeType parses TrueType files with github.com/golang/freetype.
	// It exposes the native on/off-curve point tags.
	ParserFreeType Parser = "freetype"
	// ParserGoText parses with github.com/go-text/typesetting.
	ParserGoText Parser = "gotext"
)

// DefaultParser is used when no parser is named.
const DefaultParser = ParserSFNT

// ParseFace parses font data with the given parser. The name is used in
// error messages only.
func ParseFace(name string, data []byte, parser Parser) (Face, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	switch Parser(strings.ToLower(string(parser))) {
	case ParserSFNT, "":
		return NewSFNTFace(name, data)
	case ParserFreeType:
		return NewTrueTypeFace(name, data)
	case ParserGoText:
		return NewGoTextFace(name, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownParser, parser)
	}
}

// Library maps font names to faces.
type Library struct {
	mu    sync.RWMutex
	faces map[string]Face
	def   string
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{faces: make(map[string]Face)}
}

// Register adds or replaces a face under name. The first face registered
// becomes the default.
func (l *Library) Register(name string, f Face) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faces[name] = f
	if l.def == "" {
		l.def = name
	}
}

// SetDefault selects the face used for an empty font name.
func (l *Library) SetDefault(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.faces[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	l.def = name
	return nil
}

// Default returns the name of the default face, or "" if none is registered.
func (l *Library) Default() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.def
}

// Load reads a font file and registers it under name.
func (l *Library) Load(name, path string, parser Parser) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("glyph: load %s: %w", name, err)
	}
	f, err := ParseFace(name, data, parser)
	if err != nil {
		return fmt.Errorf("glyph: load %s: %w", name, err)
	}
	l.Register(name, f)
	return nil
}

// Face returns the face registered under name. The empty name selects the
// default face.
func (l *Library) Face(name string) (Face, error) {
	l.mu.RLock()
	if name == "" {
		name = l.def
	}
	f, ok := l.faces[name]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	return f, nil
}

// Names returns the registered font names in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.faces))
	for n := range l.faces {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
