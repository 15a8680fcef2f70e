package glyph

import (
	"errors"
	"fmt"
)

// Sentinel errors for the glyph package.
var (
	// ErrUnknownFont is returned when a font name is not registered.
	ErrUnknownFont = errors.New("glyph: unknown font")

	// ErrEmptyFontData is returned when a face is parsed from empty data.
	ErrEmptyFontData = errors.New("glyph: empty font data")

	// ErrUnknownParser is returned for an unrecognised Parser value.
	ErrUnknownParser = errors.New("glyph: unknown parser")

	// ErrMalformedOutline is returned when an outline's tags, points and
	// contour ends disagree.
	ErrMalformedOutline = errors.New("glyph: malformed outline")

	// ErrInvalidSize is returned for non-positive pixel sizes.
	ErrInvalidSize = errors.New("glyph: invalid size")
)

// NotFoundError is returned when a font has no glyph for a character.
type NotFoundError struct {
	Font string
	Char rune
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("glyph: font %q has no glyph for %q", e.Font, e.Char)
}
