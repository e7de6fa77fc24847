package expr

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Character classes. Identifier and operator characters are disjoint; the
// operator table is a fixed set of ranges, not "everything else", so that
// unrecognized input fails scanning instead of producing garbage tokens.

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F'
}

func isIdentifierHead(r rune) bool {
	switch r {
	case '_', '#', '$', '@':
		return true
	}
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		return true
	case r >= 0x80:
		return unicode.IsLetter(r)
	}
	return false
}

func isIdentifierBody(r rune) bool {
	return isIdentifierHead(r) || isDigit(r) || unicode.IsMark(r)
}

func isOperatorChar(r rune) bool {
	switch r {
	case '/', '=', '-', '+', '!', '*', '%', '<', '>', '&', '|', '^', '~', '?', ':':
		return true
	}
	switch {
	case r >= 0x00A1 && r <= 0x00A7,
		r == 0x00D7, r == 0x00F7, // × ÷
		r >= 0x2016 && r <= 0x2017,
		r >= 0x2020 && r <= 0x2027,
		r >= 0x2030 && r <= 0x203E,
		r >= 0x2041 && r <= 0x2053,
		r >= 0x2055 && r <= 0x205E,
		r >= 0x2190 && r <= 0x23FF,
		r >= 0x2500 && r <= 0x2775,
		r >= 0x2794 && r <= 0x2BFF,
		r >= 0x2E00 && r <= 0x2E7F,
		r >= 0x3001 && r <= 0x3003,
		r >= 0x3008 && r <= 0x3020,
		r == 0x3030:
		return true
	}
	return false
}

// scanNumber scans a numeric literal: a 0x-prefixed hexadecimal integer, or
// a decimal integer or fraction with an optional exponent. Text that looks
// numeric but does not parse as a finite float becomes an error leaf rather
// than aborting the scan.
func (c *Cursor) scanNumber() (subexpression, bool) {
	mark := c.mark()
	if c.scanString("0x") {
		digits, _ := c.scanCharacters(isHexDigit)
		text := c.since(mark)
		v, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			return errorLeaf(&UnexpectedTokenError{Token: text}, text), true
		}
		return literalNode(float64(v)), true
	}
	_, hasInt := c.scanCharacters(isDigit)
	hasFrac := false
	if r, ok := c.First(); ok && r == '.' {
		dot := c.mark()
		c.PopFirst()
		if _, ok := c.scanCharacters(isDigit); ok {
			hasFrac = true
		} else {
			// A trailing dot belongs to the next token.
			c.reset(dot)
		}
	}
	if !hasInt && !hasFrac {
		c.reset(mark)
		return subexpression{}, false
	}
	if r, ok := c.First(); ok && (r == 'e' || r == 'E') {
		c.PopFirst()
		if r, ok := c.First(); ok && (r == '+' || r == '-') {
			c.PopFirst()
		}
		c.scanCharacters(isDigit)
	}
	text := c.since(mark)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return errorLeaf(&UnexpectedTokenError{Token: text}, text), true
	}
	return literalNode(v), true
}

// scanIdentifier scans an identifier: an identifier-head character or a
// single leading dot, continued by identifier characters and internal single
// dots, optionally suffixed with a prime. A trailing dot is backed out.
func (c *Cursor) scanIdentifier() (string, bool) {
	start := c.mark()
	part := func() bool {
		if _, ok := c.scanCharacter(isIdentifierHead); !ok {
			return false
		}
		c.scanCharacters(isIdentifierBody)
		return true
	}
	if r, ok := c.First(); ok && r == '.' {
		c.PopFirst()
		if !part() {
			c.reset(start)
			return "", false
		}
	} else if !part() {
		return "", false
	}
	for {
		dot := c.mark()
		if r, ok := c.First(); ok && r == '.' {
			c.PopFirst()
			if part() {
				continue
			}
			c.reset(dot)
		}
		break
	}
	if r, ok := c.First(); ok && r == '\'' {
		c.PopFirst()
	}
	return c.since(start), true
}

// scanOperator scans a maximal run of operator characters, a single
// structural character from "([,", or a dot-led operator like "..". It does
// not scan closing brackets; those are consumed as delimiters.
func (c *Cursor) scanOperator() (string, bool) {
	r, ok := c.First()
	if !ok {
		return "", false
	}
	switch r {
	case '(', '[', ',':
		c.PopFirst()
		return string(r), true
	case '.':
		mark := c.mark()
		c.PopFirst()
		cont := func(r rune) bool { return isOperatorChar(r) || r == '.' }
		if _, ok := c.scanCharacters(cont); !ok {
			// A lone dot is not an operator.
			c.reset(mark)
			return "", false
		}
		return c.since(mark), true
	}
	return c.scanCharacters(isOperatorChar)
}

// scanEscapedIdentifier scans a quoted identifier delimited by a backquote,
// single quote, or double quote, with backslash escapes. Unterminated or
// empty quoted text yields an error leaf so that surrounding expressions can
// still parse.
func (c *Cursor) scanEscapedIdentifier() (subexpression, bool) {
	delim, ok := c.First()
	if !ok || delim != '`' && delim != '\'' && delim != '"' {
		return subexpression{}, false
	}
	start := c.mark()
	c.PopFirst()
	var b strings.Builder
	for {
		r, ok := c.PopFirst()
		if !ok {
			err := &MissingDelimiterError{Delim: string(delim)}
			return errorLeaf(err, c.since(start)), true
		}
		if r == delim {
			break
		}
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		e, ok := c.PopFirst()
		if !ok {
			err := &MissingDelimiterError{Delim: string(delim)}
			return errorLeaf(err, c.since(start)), true
		}
		switch e {
		case '0':
			b.WriteByte(0)
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'u':
			r, ok := c.scanCodepointEscape()
			if !ok {
				text := c.since(start)
				return errorLeaf(&UnexpectedTokenError{Token: text}, text), true
			}
			b.WriteRune(r)
		default:
			b.WriteRune(e)
		}
	}
	name := b.String()
	if name == "" {
		text := c.since(start)
		return errorLeaf(&UnexpectedTokenError{Token: text}, text), true
	}
	return symbolNode(Variable(name)), true
}

// scanCodepointEscape scans the {HEX} remainder of a \u escape.
func (c *Cursor) scanCodepointEscape() (rune, bool) {
	if !c.scanString("{") {
		return 0, false
	}
	digits, ok := c.scanCharacters(isHexDigit)
	if !ok || !c.scanString("}") {
		return 0, false
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, false
	}
	return rune(v), true
}

// EscapeIdentifier renders a symbol name so that it scans back to the same
// name: valid identifiers and operators are returned as is, and anything
// else is backquoted with the escapes understood by the parser.
func EscapeIdentifier(name string) string {
	if IsValidIdentifier(name) || IsValidOperator(name) {
		return name
	}
	var b strings.Builder
	b.WriteByte('`')
	for _, r := range name {
		switch r {
		case 0:
			b.WriteString(`\0`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '`':
			b.WriteString("\\`")
		case '\\':
			b.WriteString(`\\`)
		default:
			if unicode.IsControl(r) {
				b.WriteString(`\u{` + strconv.FormatInt(int64(r), 16) + `}`)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('`')
	return b.String()
}

// IsValidIdentifier reports whether s scans as exactly one identifier with
// nothing left over.
func IsValidIdentifier(s string) bool {
	c := NewCursor(s)
	_, ok := c.scanIdentifier()
	return ok && c.Empty()
}

// IsValidOperator reports whether s scans as exactly one operator token with
// nothing left over. The structural characters "(", "[", and "," are not
// operators by themselves.
func IsValidOperator(s string) bool {
	switch s {
	case "(", "[", ",":
		return false
	}
	c := NewCursor(s)
	_, ok := c.scanOperator()
	return ok && c.Empty()
}
