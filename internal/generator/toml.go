package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/tomljson/internal/errors"
	"github.com/mcncl/tomljson/internal/models"
)

// GenerateTOML renders v, which must be a table, as a TOML document.
//
// Entries are written in insertion order. Sub-tables and arrays of tables
// that come after the last plain entry of their table become [sections] and
// [[sections]]; those that precede a plain entry are written inline so the
// order survives a round trip.
func (g *Generator) GenerateTOML(v models.Value) (string, error) {
	root, ok := v.(*models.Table)
	if !ok {
		kind := "missing value"
		if v != nil {
			kind = v.Kind().String()
		}
		return "", errors.NewUnsupportedValueError("", fmt.Sprintf("TOML documents must be tables, got %s", kind))
	}

	w := &tomlWriter{}
	if err := w.body(root, nil, ""); err != nil {
		return "", err
	}
	return w.b.String(), nil
}

type tomlWriter struct {
	b strings.Builder
	// lastHeader is the header on the most recent line, nil once a
	// key = value line follows it.
	lastHeader []string
}

// body writes the entries of t below a header that the caller already wrote.
func (w *tomlWriter) body(t *models.Table, header []string, path string) error {
	entries := t.Entries()
	start := sectionStart(entries)

	for _, e := range entries[:start] {
		w.b.WriteString(formatKey(e.Key))
		w.b.WriteString(" = ")
		if err := writeInline(&w.b, e.Value, models.KeyPath(path, e.Key)); err != nil {
			return err
		}
		w.b.WriteByte('\n')
		w.lastHeader = nil
	}

	for _, e := range entries[start:] {
		childHeader := append(append([]string(nil), header...), formatKey(e.Key))
		childPath := models.KeyPath(path, e.Key)
		switch val := e.Value.(type) {
		case *models.Table:
			if err := w.table(val, childHeader, childPath); err != nil {
				return err
			}
		case models.Array:
			for i, elem := range val {
				w.header("[[", childHeader, "]]")
				if err := w.body(elem.(*models.Table), childHeader, models.IndexPath(childPath, i)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w *tomlWriter) table(t *models.Table, header []string, path string) error {
	// A table holding only sub-sections is implied by their headers.
	if t.Len() == 0 || sectionStart(t.Entries()) > 0 {
		w.header("[", header, "]")
	}
	return w.body(t, header, path)
}

// header writes a section header, separated from the previous line by a blank
// line unless that line is the header of an enclosing section.
func (w *tomlWriter) header(opening string, keys []string, closing string) {
	if w.b.Len() > 0 && !nestedUnder(keys, w.lastHeader) {
		w.b.WriteByte('\n')
	}
	w.lastHeader = keys
	w.b.WriteString(opening)
	w.b.WriteString(strings.Join(keys, "."))
	w.b.WriteString(closing)
	w.b.WriteByte('\n')
}

// nestedUnder reports whether keys names a section strictly inside parent.
func nestedUnder(keys, parent []string) bool {
	if parent == nil || len(keys) <= len(parent) {
		return false
	}
	for i, k := range parent {
		if keys[i] != k {
			return false
		}
	}
	return true
}

// sectionStart returns the index after the last entry that has to be written
// as key = value. Every entry from there on can be a section.
func sectionStart(entries []models.Entry) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if !isSection(entries[i].Value) {
			return i + 1
		}
	}
	return 0
}

func isSection(v models.Value) bool {
	switch val := v.(type) {
	case *models.Table:
		return true
	case models.Array:
		return isArrayOfTables(val)
	default:
		return false
	}
}

func isArrayOfTables(arr models.Array) bool {
	if len(arr) == 0 {
		return false
	}
	for _, elem := range arr {
		if _, ok := elem.(*models.Table); !ok {
			return false
		}
	}
	return true
}

func writeInline(b *strings.Builder, v models.Value, path string) error {
	switch val := v.(type) {
	case models.Bool:
		b.WriteString(strconv.FormatBool(bool(val)))
	case models.Integer:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case models.Float:
		b.WriteString(formatFloat(float64(val)))
	case models.String:
		quote(b, string(val))
	case models.DateTime:
		b.WriteString(val.String())
	case models.Array:
		b.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeInline(b, elem, models.IndexPath(path, i)); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case *models.Table:
		if val.Len() == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{ ")
		for i, e := range val.Entries() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatKey(e.Key))
			b.WriteString(" = ")
			if err := writeInline(b, e.Value, models.KeyPath(path, e.Key)); err != nil {
				return err
			}
		}
		b.WriteString(" }")
	case models.Null:
		return errors.NewUnsupportedValueError(path, "TOML has no null value")
	default:
		return errors.NewUnsupportedValueError(path, fmt.Sprintf("cannot write %T as TOML", v))
	}
	return nil
}

// formatKey returns key as a bare key when TOML allows it, quoted otherwise.
func formatKey(key string) string {
	if isBareKey(key) {
		return key
	}
	var b strings.Builder
	quote(&b, key)
	return b.String()
}

func isBareKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
