package manifest

import "slices"

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindTable
	KindArray
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindArray:
		return "array"
	case KindScalar:
		return "scalar"
	default:
		return "invalid"
	}
}

// Value is a single manifest value. The zero Value is invalid and cannot be
// encoded.
type Value struct {
	kind   Kind
	str    string
	table  *Table
	array  []Value
	scalar any
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// TableValue returns a table Value. A nil table is treated as empty.
func TableValue(t *Table) Value {
	if t == nil {
		t = NewTable()
	}
	return Value{kind: KindTable, table: t}
}

// ArrayValue returns an array Value holding items.
func ArrayValue(items ...Value) Value { return Value{kind: KindArray, array: items} }

// ScalarValue wraps a non-string TOML scalar (int64, float64, bool or a date
// type) decoded by the TOML library.
func ScalarValue(v any) Value { return Value{kind: KindScalar, scalar: v} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) AsTable() (*Table, bool) {
	if v.kind != KindTable {
		return nil, false
	}
	return v.table, true
}

func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.array, true
}

func (v Value) AsScalar() (any, bool) {
	if v.kind != KindScalar {
		return nil, false
	}
	return v.scalar, true
}

// Table is an ordered mapping of keys to values. Existing keys keep their
// position when replaced; new keys are appended.
type Table struct {
	keys   []string
	values map[string]Value
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string]Value)}
}

func (t *Table) Len() int { return len(t.keys) }

// Keys returns the keys in order.
func (t *Table) Keys() []string { return slices.Clone(t.keys) }

func (t *Table) Get(key string) (Value, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Set inserts or replaces key.
func (t *Table) Set(key string, v Value) {
	if _, exists := t.values[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.values[key] = v
}

// Delete removes key, reporting whether it was present.
func (t *Table) Delete(key string) bool {
	if _, exists := t.values[key]; !exists {
		return false
	}
	delete(t.values, key)
	t.keys = slices.DeleteFunc(t.keys, func(k string) bool { return k == key })
	return true
}

// GetTable returns the table stored at key, if key holds a table.
func (t *Table) GetTable(key string) (*Table, bool) {
	v, ok := t.values[key]
	if !ok {
		return nil, false
	}
	return v.AsTable()
}

// GetString returns the string stored at key, if key holds a string.
func (t *Table) GetString(key string) (string, bool) {
	v, ok := t.values[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Lookup follows a dotted key path through nested tables.
func (t *Table) Lookup(path ...string) (Value, bool) {
	if len(path) == 0 {
		return TableValue(t), true
	}
	cur := t
	for _, key := range path[:len(path)-1] {
		next, ok := cur.GetTable(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur.Get(path[len(path)-1])
}

// EnsureTable returns the table at key, creating it when absent. A non-table
// value at key is replaced by an empty table.
func (t *Table) EnsureTable(key string) *Table {
	if sub, ok := t.GetTable(key); ok {
		return sub
	}
	sub := NewTable()
	t.Set(key, TableValue(sub))
	return sub
}
