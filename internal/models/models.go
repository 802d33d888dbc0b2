package models

import (
	"fmt"
	"math"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindDateTime
	KindArray
	KindTable
)

var kindNames = map[Kind]string{
	KindNull:     "null",
	KindBool:     "boolean",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindString:   "string",
	KindDateTime: "datetime",
	KindArray:    "array",
	KindTable:    "table",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is any value expressible in TOML or JSON.
// The set of implementations is closed: Null, Bool, Integer, Float, String,
// DateTime, Array and *Table.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the JSON null. TOML has no equivalent.
type Null struct{}

// Bool is a boolean scalar.
type Bool bool

// Integer is a signed 64-bit integer.
type Integer int64

// Float is an IEEE-754 double.
type Float float64

// String is UTF-8 text.
type String string

// Array is an ordered, possibly heterogeneous, sequence of values.
type Array []Value

func (Null) Kind() Kind     { return KindNull }
func (Bool) Kind() Kind     { return KindBool }
func (Integer) Kind() Kind  { return KindInteger }
func (Float) Kind() Kind    { return KindFloat }
func (String) Kind() Kind   { return KindString }
func (DateTime) Kind() Kind { return KindDateTime }
func (Array) Kind() Kind    { return KindArray }
func (*Table) Kind() Kind   { return KindTable }

func (Null) isValue()     {}
func (Bool) isValue()     {}
func (Integer) isValue()  {}
func (Float) isValue()    {}
func (String) isValue()   {}
func (DateTime) isValue() {}
func (Array) isValue()    {}
func (*Table) isValue()   {}

// IsFinite reports whether f is neither infinite nor NaN.
func (f Float) IsFinite() bool {
	return !math.IsInf(float64(f), 0) && !math.IsNaN(float64(f))
}

// DateTimeKind is one of the four TOML datetime subtypes.
type DateTimeKind int

const (
	OffsetDateTime DateTimeKind = iota
	LocalDateTime
	LocalDate
	LocalTime
)

func (k DateTimeKind) String() string {
	switch k {
	case OffsetDateTime:
		return "offset-datetime"
	case LocalDateTime:
		return "local-datetime"
	case LocalDate:
		return "local-date"
	case LocalTime:
		return "local-time"
	default:
		return fmt.Sprintf("datetime(%d)", int(k))
	}
}

// Layouts used to render each datetime subtype.
const (
	layoutOffsetDateTime = time.RFC3339Nano
	layoutLocalDateTime  = "2006-01-02T15:04:05.999999999"
	layoutLocalDate      = "2006-01-02"
	layoutLocalTime      = "15:04:05.999999999"
)

// DateTime is a calendar or clock value. For the local subtypes Time is in
// UTC and only the fields relevant to the subtype are meaningful.
type DateTime struct {
	Layout DateTimeKind
	Time   time.Time
}

// String renders the value as RFC 3339 / ISO-8601 text for its subtype.
func (d DateTime) String() string {
	switch d.Layout {
	case LocalDateTime:
		return d.Time.Format(layoutLocalDateTime)
	case LocalDate:
		return d.Time.Format(layoutLocalDate)
	case LocalTime:
		return d.Time.Format(layoutLocalTime)
	default:
		return d.Time.Format(layoutOffsetDateTime)
	}
}

// Format is one of the two document formats handled by the tool.
type Format int

const (
	FormatTOML Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "JSON"
	}
	return "TOML"
}

// Opposite returns the format a document of format f is converted into.
func (f Format) Opposite() Format {
	if f == FormatJSON {
		return FormatTOML
	}
	return FormatJSON
}
