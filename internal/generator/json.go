package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/tomljson/internal/errors"
	"github.com/mcncl/tomljson/internal/models"
)

// GenerateJSON renders v as pretty-printed JSON. Object members are written
// in table insertion order, one per line. The result has no trailing newline.
func (g *Generator) GenerateJSON(v models.Value) (string, error) {
	var b strings.Builder
	if err := g.writeJSON(&b, v, "", 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (g *Generator) writeJSON(b *strings.Builder, v models.Value, path string, depth int) error {
	switch val := v.(type) {
	case models.Null:
		b.WriteString("null")
	case models.Bool:
		b.WriteString(strconv.FormatBool(bool(val)))
	case models.Integer:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case models.Float:
		if !val.IsFinite() {
			return errors.NewUnsupportedValueError(path, fmt.Sprintf("JSON has no representation for float %v", float64(val)))
		}
		b.WriteString(formatFloat(float64(val)))
	case models.String:
		quote(b, string(val))
	case models.Array:
		if len(val) == 0 {
			b.WriteString("[]")
			return nil
		}
		b.WriteString("[\n")
		for i, elem := range val {
			g.writeIndent(b, depth+1)
			if err := g.writeJSON(b, elem, models.IndexPath(path, i), depth+1); err != nil {
				return err
			}
			if i < len(val)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		g.writeIndent(b, depth)
		b.WriteByte(']')
	case *models.Table:
		if val.Len() == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{\n")
		entries := val.Entries()
		for i, e := range entries {
			g.writeIndent(b, depth+1)
			quote(b, e.Key)
			b.WriteString(": ")
			if err := g.writeJSON(b, e.Value, models.KeyPath(path, e.Key), depth+1); err != nil {
				return err
			}
			if i < len(entries)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		g.writeIndent(b, depth)
		b.WriteByte('}')
	case models.DateTime:
		return errors.NewUnsupportedValueError(path, "JSON has no datetime type")
	default:
		return errors.NewUnsupportedValueError(path, fmt.Sprintf("cannot write %T as JSON", v))
	}
	return nil
}

func (g *Generator) writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(g.indent)
	}
}
