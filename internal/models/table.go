package models

// Entry is a single key/value pair of a Table.
type Entry struct {
	Key   string
	Value Value
}

// Table maps string keys to values and remembers insertion order.
// The zero value is not usable; create tables with NewTable.
type Table struct {
	keys   []string
	values map[string]Value
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string]Value)}
}

// TableOf builds a table from entries in order. Later duplicates replace
// earlier values in place.
func TableOf(entries ...Entry) *Table {
	t := NewTable()
	for _, e := range entries {
		t.Set(e.Key, e.Value)
	}
	return t
}

// Set stores v under key. Replacing an existing key keeps its position and
// reports true.
func (t *Table) Set(key string, v Value) bool {
	if _, exists := t.values[key]; exists {
		t.values[key] = v
		return true
	}
	t.keys = append(t.keys, key)
	t.values[key] = v
	return false
}

// Get returns the value stored under key.
func (t *Table) Get(key string) (Value, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	_, ok := t.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.keys)
}

// Entries returns the entries in insertion order.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.keys))
	for _, k := range t.keys {
		entries = append(entries, Entry{Key: k, Value: t.values[k]})
	}
	return entries
}

// Equal reports whether a and b are structurally equal: same variants, same
// scalar values, same array order and same table key order.
// NaN floats compare equal to each other.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Float:
		bv := b.(Float)
		if av != av && bv != bv {
			return true
		}
		return av == bv
	case DateTime:
		bv := b.(DateTime)
		return av.Layout == bv.Layout && av.Time.Equal(bv.Time) && av.String() == bv.String()
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Table:
		bv := b.(*Table)
		if av.Len() != bv.Len() {
			return false
		}
		for i, k := range av.keys {
			if bv.keys[i] != k {
				return false
			}
			if !Equal(av.values[k], bv.values[k]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
