package expr

import "unicode"

// Cursor is a scanning position over a fixed buffer of code points. All of
// its views are subslices of the same backing buffer, so taking a prefix or
// the remaining suffix never copies the input.
//
// A Cursor is a cheap value to create; callers embedding expressions inside
// a larger document hand one to ParseSubexpression, which advances it past
// the consumed portion.
type Cursor struct {
	buf []rune
	pos int
}

// NewCursor returns a cursor positioned at the start of s.
func NewCursor(s string) *Cursor {
	return &Cursor{buf: []rune(s)}
}

// Empty reports whether the cursor has reached the end of its input.
func (c *Cursor) Empty() bool {
	return c.pos >= len(c.buf)
}

// First returns the code point at the cursor without consuming it.
func (c *Cursor) First() (rune, bool) {
	if c.Empty() {
		return 0, false
	}
	return c.buf[c.pos], true
}

// PopFirst consumes and returns the code point at the cursor.
func (c *Cursor) PopFirst() (rune, bool) {
	r, ok := c.First()
	if ok {
		c.pos++
	}
	return r, ok
}

// Rest returns the unconsumed remainder of the input.
func (c *Cursor) Rest() string {
	return string(c.buf[c.pos:])
}

// mark records the current position so that a scan can be backed out or its
// consumed text recovered with since.
func (c *Cursor) mark() int {
	return c.pos
}

// reset moves the cursor back to a previous mark.
func (c *Cursor) reset(mark int) {
	c.pos = mark
}

// since returns the text consumed between a mark and the current position.
func (c *Cursor) since(mark int) string {
	return string(c.buf[mark:c.pos])
}

// hasPrefix reports whether the unconsumed input begins with s.
func (c *Cursor) hasPrefix(s string) bool {
	i := c.pos
	for _, r := range s {
		if i >= len(c.buf) || c.buf[i] != r {
			return false
		}
		i++
	}
	return true
}

// scanString consumes s if the unconsumed input begins with it.
func (c *Cursor) scanString(s string) bool {
	if !c.hasPrefix(s) {
		return false
	}
	c.pos += len([]rune(s))
	return true
}

// scanCharacter consumes a single code point matching pred.
func (c *Cursor) scanCharacter(pred func(rune) bool) (rune, bool) {
	r, ok := c.First()
	if !ok || !pred(r) {
		return 0, false
	}
	c.pos++
	return r, true
}

// scanCharacters greedily consumes the longest non-empty prefix whose code
// points all match pred. The cursor is unmoved when nothing matches.
func (c *Cursor) scanCharacters(pred func(rune) bool) (string, bool) {
	start := c.pos
	for !c.Empty() && pred(c.buf[c.pos]) {
		c.pos++
	}
	if c.pos == start {
		return "", false
	}
	return string(c.buf[start:c.pos]), true
}

// skipWhitespace consumes a run of whitespace and reports whether any was
// consumed.
func (c *Cursor) skipWhitespace() bool {
	_, ok := c.scanCharacters(unicode.IsSpace)
	return ok
}

// followedByWhitespace reports whether the cursor sits at whitespace or at
// the end of the input. The end of the input counts as whitespace for the
// purposes of operator classification.
func (c *Cursor) followedByWhitespace() bool {
	r, ok := c.First()
	return !ok || unicode.IsSpace(r)
}

// skipTo advances the cursor until the unconsumed input begins with one of
// the given strings, reporting whether any was found before the end.
func (c *Cursor) skipTo(delimiters []string) bool {
	for !c.Empty() {
		for _, d := range delimiters {
			if c.hasPrefix(d) {
				return true
			}
		}
		c.pos++
	}
	return false
}
