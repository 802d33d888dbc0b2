package parser

import (
	stderrors "errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"

	"github.com/mcncl/tomljson/internal/models"
)

// ParseTOML converts a TOML document into a value tree rooted at a table.
//
// The go-toml AST parser handles the grammar; this reader applies the table
// semantics on top of it: keys may be defined once, [headers] may not be
// repeated, inline tables and arrays are closed once written, and tables
// introduced by dotted keys cannot be reopened with a header.
func ParseTOML(data []byte) (*models.Table, error) {
	r := &tomlReader{
		data:    data,
		root:    models.NewTable(),
		origins: make(map[*models.Table]tableOrigin),
		arrays:  make(map[slot]bool),
	}
	r.origins[r.root] = originHeader
	r.current = r.root
	r.parser.Reset(data)

	for r.parser.NextExpression() {
		expr := r.parser.Expression()
		var err error
		switch expr.Kind {
		case unstable.KeyValue:
			err = r.keyValue(r.current, expr)
		case unstable.Table:
			err = r.table(expr)
		case unstable.ArrayTable:
			err = r.arrayTable(expr)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := r.parser.Error(); err != nil {
		return nil, r.syntaxFailure(err)
	}
	return r.root, nil
}

// tableOrigin records how a table came into existence, which decides how it
// may be extended later in the document.
type tableOrigin int

const (
	// originImplicit tables were created as intermediate segments of a header.
	originImplicit tableOrigin = iota
	// originHeader tables were defined by a [header] (or are the root).
	originHeader
	// originDotted tables were created by a dotted key in a key/value pair.
	originDotted
	// originInline tables are inline tables or live inside static arrays.
	originInline
)

// slot identifies a key within a particular table.
type slot struct {
	table *models.Table
	key   string
}

type tomlReader struct {
	data    []byte
	parser  unstable.Parser
	root    *models.Table
	current *models.Table
	origins map[*models.Table]tableOrigin
	// arrays marks keys that hold arrays of tables built from [[headers]].
	arrays map[slot]bool
}

type keyPart struct {
	name string
	node *unstable.Node
}

func (r *tomlReader) keyParts(n *unstable.Node) []keyPart {
	var parts []keyPart
	it := n.Key()
	for it.Next() {
		k := it.Node()
		parts = append(parts, keyPart{name: string(k.Data), node: k})
	}
	return parts
}

// table handles a [a.b.c] header.
func (r *tomlReader) table(expr *unstable.Node) error {
	parts := r.keyParts(expr)
	parent, err := r.descend(parts[:len(parts)-1])
	if err != nil {
		return err
	}

	last := parts[len(parts)-1]
	existing, ok := parent.Get(last.name)
	if !ok {
		t := models.NewTable()
		r.origins[t] = originHeader
		parent.Set(last.name, t)
		r.current = t
		return nil
	}

	t, isTable := existing.(*models.Table)
	if !isTable {
		if r.arrays[slot{parent, last.name}] {
			return r.nodeFailure(last.node, fmt.Sprintf("table %s conflicts with array of tables of the same name", joinKey(parts)))
		}
		return r.nodeFailure(last.node, fmt.Sprintf("key %s is already defined as %s", joinKey(parts), existing.Kind()))
	}
	if r.origins[t] != originImplicit {
		return r.nodeFailure(last.node, fmt.Sprintf("table %s is already defined", joinKey(parts)))
	}
	r.origins[t] = originHeader
	r.current = t
	return nil
}

// arrayTable handles a [[a.b.c]] header.
func (r *tomlReader) arrayTable(expr *unstable.Node) error {
	parts := r.keyParts(expr)
	parent, err := r.descend(parts[:len(parts)-1])
	if err != nil {
		return err
	}

	last := parts[len(parts)-1]
	key := slot{parent, last.name}
	t := models.NewTable()
	r.origins[t] = originHeader

	existing, ok := parent.Get(last.name)
	if !ok {
		parent.Set(last.name, models.Array{t})
		r.arrays[key] = true
		r.current = t
		return nil
	}
	if !r.arrays[key] {
		return r.nodeFailure(last.node, fmt.Sprintf("key %s is already defined as %s", joinKey(parts), existing.Kind()))
	}
	parent.Set(last.name, append(existing.(models.Array), t))
	r.current = t
	return nil
}

// descend walks the intermediate segments of a header, creating implicit
// tables as needed. Arrays of tables resolve to their last element.
func (r *tomlReader) descend(parts []keyPart) (*models.Table, error) {
	t := r.root
	for i, part := range parts {
		existing, ok := t.Get(part.name)
		if !ok {
			child := models.NewTable()
			r.origins[child] = originImplicit
			t.Set(part.name, child)
			t = child
			continue
		}

		switch v := existing.(type) {
		case *models.Table:
			if r.origins[v] == originInline {
				return nil, r.nodeFailure(part.node, fmt.Sprintf("cannot extend inline table %s", joinKey(parts[:i+1])))
			}
			t = v
		case models.Array:
			if !r.arrays[slot{t, part.name}] {
				return nil, r.nodeFailure(part.node, fmt.Sprintf("cannot extend static array %s", joinKey(parts[:i+1])))
			}
			t = v[len(v)-1].(*models.Table)
		default:
			return nil, r.nodeFailure(part.node, fmt.Sprintf("key %s is already defined as %s", joinKey(parts[:i+1]), existing.Kind()))
		}
	}
	return t, nil
}

// keyValue stores a key = value expression into target. Dotted keys create
// intermediate tables that can only be extended by further dotted keys.
func (r *tomlReader) keyValue(target *models.Table, expr *unstable.Node) error {
	parts := r.keyParts(expr)
	t := target
	for i, part := range parts[:len(parts)-1] {
		existing, ok := t.Get(part.name)
		if !ok {
			child := models.NewTable()
			r.origins[child] = originDotted
			t.Set(part.name, child)
			t = child
			continue
		}
		child, isTable := existing.(*models.Table)
		if !isTable || r.origins[child] != originDotted {
			return r.nodeFailure(part.node, fmt.Sprintf("key %s is already defined", joinKey(parts[:i+1])))
		}
		t = child
	}

	last := parts[len(parts)-1]
	if t.Has(last.name) {
		return r.nodeFailure(last.node, fmt.Sprintf("duplicate key %s", joinKey(parts)))
	}
	value, err := r.value(expr.Value())
	if err != nil {
		return err
	}
	r.freeze(value)
	t.Set(last.name, value)
	return nil
}

// freeze closes every table reachable from v so that later headers and
// dotted keys cannot extend it.
func (r *tomlReader) freeze(v models.Value) {
	switch c := v.(type) {
	case *models.Table:
		r.origins[c] = originInline
		for _, e := range c.Entries() {
			r.freeze(e.Value)
		}
	case models.Array:
		for _, elem := range c {
			r.freeze(elem)
		}
	}
}

func (r *tomlReader) value(n *unstable.Node) (models.Value, error) {
	switch n.Kind {
	case unstable.String:
		return models.String(n.Data), nil
	case unstable.Bool:
		return models.Bool(string(n.Data) == "true"), nil
	case unstable.Integer:
		return r.integer(n)
	case unstable.Float:
		return r.float(n)
	case unstable.DateTime, unstable.LocalDateTime, unstable.LocalDate, unstable.LocalTime:
		return r.dateTime(n)
	case unstable.Array:
		return r.array(n)
	case unstable.InlineTable:
		return r.inlineTable(n)
	default:
		return nil, r.nodeFailure(n, fmt.Sprintf("unsupported value kind %s", n.Kind))
	}
}

func (r *tomlReader) array(n *unstable.Node) (models.Value, error) {
	arr := models.Array{}
	it := n.Children()
	for it.Next() {
		elem := it.Node()
		if elem.Kind == unstable.Comment {
			continue
		}
		v, err := r.value(elem)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

func (r *tomlReader) inlineTable(n *unstable.Node) (models.Value, error) {
	t := models.NewTable()
	it := n.Children()
	for it.Next() {
		kv := it.Node()
		if kv.Kind != unstable.KeyValue {
			continue
		}
		if err := r.keyValue(t, kv); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (r *tomlReader) integer(n *unstable.Node) (models.Value, error) {
	raw := strings.ReplaceAll(string(n.Data), "_", "")
	base := 10
	digits := raw
	switch {
	case strings.HasPrefix(raw, "0x"):
		base, digits = 16, raw[2:]
	case strings.HasPrefix(raw, "0o"):
		base, digits = 8, raw[2:]
	case strings.HasPrefix(raw, "0b"):
		base, digits = 2, raw[2:]
	}

	i, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		if stderrors.Is(err, strconv.ErrRange) {
			return nil, r.nodeFailure(n, fmt.Sprintf("integer %s is out of range", n.Data))
		}
		return nil, r.nodeFailure(n, fmt.Sprintf("invalid integer %s", n.Data))
	}
	return models.Integer(i), nil
}

func (r *tomlReader) float(n *unstable.Node) (models.Value, error) {
	raw := strings.ReplaceAll(string(n.Data), "_", "")
	unsigned := strings.TrimLeft(raw, "+-")
	negative := strings.HasPrefix(raw, "-")

	switch unsigned {
	case "inf":
		if negative {
			return models.Float(math.Inf(-1)), nil
		}
		return models.Float(math.Inf(1)), nil
	case "nan":
		return models.Float(math.NaN()), nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if stderrors.Is(err, strconv.ErrRange) {
			return nil, r.nodeFailure(n, fmt.Sprintf("float %s is out of range", n.Data))
		}
		return nil, r.nodeFailure(n, fmt.Sprintf("invalid float %s", n.Data))
	}
	return models.Float(f), nil
}

func (r *tomlReader) dateTime(n *unstable.Node) (models.Value, error) {
	raw := n.Data
	switch n.Kind {
	case unstable.LocalDate:
		var d toml.LocalDate
		if err := d.UnmarshalText(raw); err != nil {
			return nil, r.nodeFailure(n, fmt.Sprintf("invalid local date %s: %v", raw, err))
		}
		t := d.AsTime(time.UTC)
		if t.Day() != d.Day || int(t.Month()) != d.Month {
			return nil, r.nodeFailure(n, fmt.Sprintf("invalid local date %s", raw))
		}
		return models.DateTime{Layout: models.LocalDate, Time: t}, nil

	case unstable.LocalTime:
		var lt toml.LocalTime
		if err := lt.UnmarshalText(raw); err != nil {
			return nil, r.nodeFailure(n, fmt.Sprintf("invalid local time %s: %v", raw, err))
		}
		if lt.Hour > 23 || lt.Minute > 59 || lt.Second > 60 {
			return nil, r.nodeFailure(n, fmt.Sprintf("invalid local time %s", raw))
		}
		t := time.Date(0, time.January, 1, lt.Hour, lt.Minute, lt.Second, lt.Nanosecond, time.UTC)
		return models.DateTime{Layout: models.LocalTime, Time: t}, nil

	case unstable.LocalDateTime:
		var ldt toml.LocalDateTime
		if err := ldt.UnmarshalText(raw); err != nil {
			return nil, r.nodeFailure(n, fmt.Sprintf("invalid local datetime %s: %v", raw, err))
		}
		t := ldt.AsTime(time.UTC)
		if t.Day() != ldt.Day || int(t.Month()) != ldt.Month || t.Hour() != ldt.Hour {
			return nil, r.nodeFailure(n, fmt.Sprintf("invalid local datetime %s", raw))
		}
		return models.DateTime{Layout: models.LocalDateTime, Time: t}, nil

	default:
		t, err := time.Parse(time.RFC3339Nano, normalizeOffsetDateTime(string(raw)))
		if err != nil {
			return nil, r.nodeFailure(n, fmt.Sprintf("invalid offset datetime %s", raw))
		}
		return models.DateTime{Layout: models.OffsetDateTime, Time: t}, nil
	}
}

// normalizeOffsetDateTime rewrites the separators TOML allows (space or a
// lower-case t between date and time, lower-case z) into RFC 3339 form.
func normalizeOffsetDateTime(s string) string {
	b := []byte(s)
	if len(b) > 10 && (b[10] == ' ' || b[10] == 't') {
		b[10] = 'T'
	}
	if n := len(b); n > 0 && b[n-1] == 'z' {
		b[n-1] = 'Z'
	}
	return string(b)
}

func (r *tomlReader) nodeFailure(n *unstable.Node, message string) error {
	return parseFailure(models.FormatTOML, r.data, r.offsetOf(n), message)
}

// offsetOf locates a node in the input. Keys carry their raw range; scalar
// literals reference the input directly.
func (r *tomlReader) offsetOf(n *unstable.Node) int {
	if n == nil {
		return 0
	}
	if n.Raw.Length > 0 {
		return int(n.Raw.Offset)
	}
	switch n.Kind {
	case unstable.Integer, unstable.Float, unstable.Bool,
		unstable.DateTime, unstable.LocalDateTime, unstable.LocalDate, unstable.LocalTime:
		if len(n.Data) > 0 {
			return int(r.parser.Range(n.Data).Offset)
		}
	}
	return 0
}

func (r *tomlReader) syntaxFailure(err error) error {
	var perr *unstable.ParserError
	if !stderrors.As(err, &perr) {
		return parseFailure(models.FormatTOML, r.data, len(r.data), err.Error())
	}
	offset := len(r.data)
	if len(perr.Highlight) > 0 {
		offset = int(r.parser.Range(perr.Highlight).Offset)
	}
	return parseFailure(models.FormatTOML, r.data, offset, perr.Message)
}

func joinKey(parts []keyPart) string {
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.name
	}
	return strings.Join(names, ".")
}
