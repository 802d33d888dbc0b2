package generator

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultIndent is the number of spaces per JSON nesting level.
const DefaultIndent = 2

// Generator serializes value trees into TOML or JSON text.
type Generator struct {
	indent string
}

// NewGenerator creates a Generator using the default two-space JSON indent.
func NewGenerator() *Generator {
	return NewGeneratorWithIndent(DefaultIndent)
}

// NewGeneratorWithIndent creates a Generator indenting JSON by the given
// number of spaces per level. Values below one fall back to the default.
func NewGeneratorWithIndent(spaces int) *Generator {
	if spaces < 1 {
		spaces = DefaultIndent
	}
	return &Generator{indent: strings.Repeat(" ", spaces)}
}

// formatFloat renders a float so that it always reads back as a float:
// 42 becomes 42.0. Magnitudes below 1e-6 or from 1e21 up use an exponent,
// everything else is written in plain decimal.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if format == 'e' {
		// 1e-07 becomes 1e-7
		if n := len(s); n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
		return s
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

const hexDigits = "0123456789abcdef"

// quote writes s as a double-quoted string using only the escapes JSON and
// TOML basic strings have in common.
func quote(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				b.WriteString(`\"`)
			case '\\':
				b.WriteString(`\\`)
			case '\b':
				b.WriteString(`\b`)
			case '\f':
				b.WriteString(`\f`)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				if c < 0x20 || c == 0x7f {
					b.WriteString(`\u00`)
					b.WriteByte(hexDigits[c>>4])
					b.WriteByte(hexDigits[c&0xf])
				} else {
					b.WriteByte(c)
				}
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteString("\uFFFD")
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	b.WriteByte('"')
}
