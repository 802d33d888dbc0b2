// Package mapper resolves the type differences between TOML and JSON value
// trees before a tree is handed to the writer of the other format.
package mapper

import (
	"fmt"

	"github.com/mcncl/tomljson/internal/errors"
	"github.com/mcncl/tomljson/internal/models"
)

// NullPolicy decides what happens to JSON nulls on the way to TOML.
type NullPolicy string

const (
	// NullPolicyError fails the whole document on the first null.
	NullPolicyError NullPolicy = "error"
	// NullPolicySentinel replaces each null with a sentinel string.
	NullPolicySentinel NullPolicy = "sentinel"
)

// DefaultNullSentinel is the string written for a null under NullPolicySentinel.
const DefaultNullSentinel = "null"

// Options configure a Mapper.
type Options struct {
	NullPolicy   NullPolicy
	NullSentinel string
}

// LossyField records a value whose conversion will not round-trip.
type LossyField struct {
	Path string
	From models.Kind
	To   models.Kind
	Note string
}

func (l LossyField) String() string {
	return fmt.Sprintf("%s: %s -> %s (%s)", displayPath(l.Path), l.From, l.To, l.Note)
}

// Result is a converted tree plus the fields that were converted lossily.
type Result struct {
	Root  models.Value
	Lossy []LossyField
}

// RoundTrips reports whether converting Root back yields the source tree.
func (r Result) RoundTrips() bool {
	return len(r.Lossy) == 0
}

// Mapper converts value trees between the TOML and JSON domains.
type Mapper struct {
	options Options
	lossy   []LossyField
}

// NewMapper creates a Mapper that rejects JSON nulls.
func NewMapper() *Mapper {
	return NewMapperWithOptions(Options{NullPolicy: NullPolicyError})
}

// NewMapperWithOptions creates a Mapper with custom options.
func NewMapperWithOptions(opts Options) *Mapper {
	if opts.NullPolicy == "" {
		opts.NullPolicy = NullPolicyError
	}
	if opts.NullSentinel == "" {
		opts.NullSentinel = DefaultNullSentinel
	}
	return &Mapper{options: opts}
}

// Map converts root, a tree read from a document of format source, into a
// tree the writer of the opposite format accepts.
func (m *Mapper) Map(root models.Value, source models.Format) (Result, error) {
	if source == models.FormatJSON {
		return m.ToTOML(root)
	}
	return m.ToJSON(root)
}

// ToJSON maps a TOML tree into the JSON domain. Datetimes become their
// ISO-8601 text and are recorded as lossy; non-finite floats are rejected.
func (m *Mapper) ToJSON(root models.Value) (Result, error) {
	m.lossy = nil
	out, err := m.toJSON(root, "")
	if err != nil {
		return Result{}, err
	}
	return Result{Root: out, Lossy: m.lossy}, nil
}

func (m *Mapper) toJSON(v models.Value, path string) (models.Value, error) {
	switch val := v.(type) {
	case models.DateTime:
		m.lossy = append(m.lossy, LossyField{
			Path: path,
			From: models.KindDateTime,
			To:   models.KindString,
			Note: val.Layout.String() + " written as text",
		})
		return models.String(val.String()), nil
	case models.Float:
		if !val.IsFinite() {
			return nil, errors.NewUnsupportedValueError(path, fmt.Sprintf("JSON has no representation for float %v", float64(val)))
		}
		return val, nil
	case models.Array:
		out := make(models.Array, len(val))
		for i, elem := range val {
			mapped, err := m.toJSON(elem, models.IndexPath(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = mapped
		}
		return out, nil
	case *models.Table:
		out := models.NewTable()
		for _, e := range val.Entries() {
			mapped, err := m.toJSON(e.Value, models.KeyPath(path, e.Key))
			if err != nil {
				return nil, err
			}
			out.Set(e.Key, mapped)
		}
		return out, nil
	case nil:
		return nil, errors.NewUnsupportedValueError(path, "missing value")
	default:
		return val, nil
	}
}

// ToTOML maps a JSON tree into the TOML domain. The root must be an object.
// Nulls fail the document unless the sentinel policy is configured. Strings
// stay strings even when they look like datetimes.
func (m *Mapper) ToTOML(root models.Value) (Result, error) {
	m.lossy = nil
	if _, ok := root.(*models.Table); !ok {
		kind := "missing value"
		if root != nil {
			kind = root.Kind().String()
		}
		return Result{}, errors.NewUnsupportedValueError("", fmt.Sprintf("TOML documents must be tables, got %s", kind))
	}
	out, err := m.toTOML(root, "")
	if err != nil {
		return Result{}, err
	}
	return Result{Root: out, Lossy: m.lossy}, nil
}

func (m *Mapper) toTOML(v models.Value, path string) (models.Value, error) {
	switch val := v.(type) {
	case models.Null, nil:
		if m.options.NullPolicy != NullPolicySentinel {
			return nil, errors.NewUnsupportedValueError(path, "TOML has no null value")
		}
		m.lossy = append(m.lossy, LossyField{
			Path: path,
			From: models.KindNull,
			To:   models.KindString,
			Note: fmt.Sprintf("replaced with %q", m.options.NullSentinel),
		})
		return models.String(m.options.NullSentinel), nil
	case models.Array:
		out := make(models.Array, len(val))
		for i, elem := range val {
			mapped, err := m.toTOML(elem, models.IndexPath(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = mapped
		}
		return out, nil
	case *models.Table:
		out := models.NewTable()
		for _, e := range val.Entries() {
			mapped, err := m.toTOML(e.Value, models.KeyPath(path, e.Key))
			if err != nil {
				return nil, err
			}
			out.Set(e.Key, mapped)
		}
		return out, nil
	default:
		return val, nil
	}
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
