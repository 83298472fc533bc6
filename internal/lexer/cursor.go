package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"dada/internal/source"
)

// Cursor tracks a byte position within a file's content.
type Cursor struct {
	File *source.File
	Off  uint32
}

// NewCursor creates a cursor positioned at the start of f.
func NewCursor(f *source.File) Cursor {
	return Cursor{File: f, Off: 0}
}

func (c *Cursor) limit() uint32 {
	n, err := safecast.Conv[uint32](len(c.File.Content))
	if err != nil {
		panic(fmt.Errorf("lexer: file content length overflow: %w", err))
	}
	return n
}

// EOF reports whether the cursor has reached the end of the file.
func (c *Cursor) EOF() bool { return c.Off >= c.limit() }

// Peek reads the current byte, or 0 at EOF.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

// PeekAt reads the byte n positions ahead of the cursor, or 0 past EOF.
func (c *Cursor) PeekAt(n uint32) byte {
	if c.Off+n >= c.limit() {
		return 0
	}
	return c.File.Content[c.Off+n]
}

// Bump consumes and returns the current byte.
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.File.Content[c.Off]
	c.Off++
	return b
}

// Eat consumes the next byte if it equals b.
func (c *Cursor) Eat(b byte) bool {
	if !c.EOF() && c.File.Content[c.Off] == b {
		c.Off++
		return true
	}
	return false
}

// Mark is a saved cursor position for later span construction.
type Mark uint32

// Mark saves the current position.
func (c *Cursor) Mark() Mark { return Mark(c.Off) }

// SpanFrom builds the span between m and the current position.
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File.ID, Start: uint32(m), End: c.Off}
}
