package npy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Literal values produced by parseLiteral:
//
//	dict        map[string]any
//	tuple       tuple
//	list        list
//	str         string
//	int         int64
//	True/False  bool
//	None        nil
type (
	tuple []any
	list  []any
)

const maxLiteralDepth = 32

// parseLiteral parses the subset of Python literal syntax that .npy headers
// use. Nothing is evaluated: names other than True, False and None are
// rejected.
func parseLiteral(src string) (any, error) {
	p := &literalParser{src: src}
	v, err := p.value(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q after literal", p.src[p.pos])
	}
	return v, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *literalParser) value(depth int) (any, error) {
	if depth > maxLiteralDepth {
		return nil, p.errorf("literal nested deeper than %d", maxLiteralDepth)
	}
	p.skipSpace()
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of input")
	}
	switch {
	case c == '{':
		return p.dict(depth)
	case c == '(':
		return p.paren(depth)
	case c == '[':
		items, _, err := p.sequence(depth, ']')
		if err != nil {
			return nil, err
		}
		return list(items), nil
	case c == '\'' || c == '"':
		return p.str()
	case c == '-' || c == '+' || isDigit(c):
		return p.integer()
	case isIdentStart(c):
		return p.name()
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *literalParser) dict(depth int) (any, error) {
	p.pos++ // '{'
	out := make(map[string]any)
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated dict")
		}
		if c == '}' {
			p.pos++
			return out, nil
		}

		k, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			return nil, p.errorf("dict key is %s, want str", literalKind(k))
		}

		p.skipSpace()
		if c, ok := p.peek(); !ok || c != ':' {
			return nil, p.errorf("expected ':' after key %q", key)
		}
		p.pos++

		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		out[key] = v

		p.skipSpace()
		c, ok = p.peek()
		switch {
		case !ok:
			return nil, p.errorf("unterminated dict")
		case c == ',':
			p.pos++
		case c == '}':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or '}' in dict, got %q", c)
		}
	}
}

// paren handles tuples. A parenthesised single value without a trailing
// comma is just that value, as in Python.
func (p *literalParser) paren(depth int) (any, error) {
	items, trailingComma, err := p.sequence(depth, ')')
	if err != nil {
		return nil, err
	}
	if len(items) == 1 && !trailingComma {
		return items[0], nil
	}
	return tuple(items), nil
}

// sequence parses comma separated values up to the closing byte. The opening
// bracket is at p.pos.
func (p *literalParser) sequence(depth int, closing byte) ([]any, bool, error) {
	p.pos++
	var items []any
	trailingComma := false
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, false, p.errorf("missing %q", closing)
		}
		if c == closing {
			p.pos++
			return items, trailingComma, nil
		}

		v, err := p.value(depth + 1)
		if err != nil {
			return nil, false, err
		}
		items = append(items, v)
		trailingComma = false

		p.skipSpace()
		c, ok = p.peek()
		switch {
		case !ok:
			return nil, false, p.errorf("missing %q", closing)
		case c == ',':
			p.pos++
			trailingComma = true
		case c == closing:
			p.pos++
			return items, false, nil
		default:
			return nil, false, p.errorf("expected ',' or %q, got %q", closing, c)
		}
	}
}

func (p *literalParser) str() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\n':
			return "", p.errorf("newline in string")
		case c == '\\':
			if err := p.escape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *literalParser) escape(b *strings.Builder) error {
	p.pos++ // '\\'
	c, ok := p.peek()
	if !ok {
		return p.errorf("unterminated escape")
	}
	p.pos++
	switch c {
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0':
		b.WriteByte(0)
	case 'x':
		if p.pos+2 > len(p.src) {
			return p.errorf("short \\x escape")
		}
		n, err := strconv.ParseUint(p.src[p.pos:p.pos+2], 16, 8)
		if err != nil {
			return p.errorf("bad \\x escape %q", p.src[p.pos:p.pos+2])
		}
		b.WriteRune(rune(n))
		p.pos += 2
	default:
		// Unknown escapes keep the backslash.
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *literalParser) integer() (int64, error) {
	start := p.pos
	if c := p.src[p.pos]; c == '-' || c == '+' {
		p.pos++
	}
	digits := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == digits {
		return 0, p.errorf("expected digits after sign")
	}
	text := p.src[start:p.pos]

	// Python 2 wrote long dimensions as 3L.
	if c, ok := p.peek(); ok && (c == 'L' || c == 'l') {
		p.pos++
	}
	if c, ok := p.peek(); ok && (c == '.' || c == 'e' || c == 'E' || c == 'j' || isIdentStart(c)) {
		return 0, p.errorf("unsupported numeric literal starting %q", text)
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, p.errorf("integer %s out of range", text)
		}
		return 0, p.errorf("bad integer %q", text)
	}
	return n, nil
}

func (p *literalParser) name() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && (isIdentStart(p.src[p.pos]) || isDigit(p.src[p.pos])) {
		p.pos++
	}
	ident := p.src[start:p.pos]
	switch ident {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	case "u", "b", "U", "B":
		// String prefixes from older writers: u'descr', b'<f8'.
		if c, ok := p.peek(); ok && (c == '\'' || c == '"') {
			return p.str()
		}
	}
	p.pos = start
	return nil, p.errorf("name %q is not a literal", ident)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func literalKind(v any) string {
	switch v.(type) {
	case nil:
		return "None"
	case string:
		return "str"
	case int64:
		return "int"
	case bool:
		return "bool"
	case tuple:
		return "tuple"
	case list:
		return "list"
	case map[string]any:
		return "dict"
	default:
		return fmt.Sprintf("%T", v)
	}
}
