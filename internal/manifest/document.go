package manifest

import (
	"bytes"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
)

// FileName is the manifest file name inside a crate directory.
const FileName = "Cargo.toml"

// Document is a parsed manifest.
type Document struct {
	root *Table
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{root: NewTable()}
}

// Root returns the top-level table.
func (d *Document) Root() *Table { return d.root }

// Load reads and parses the manifest at path. Nothing is returned on failure.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.ReadFailed(path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, cerrors.ParseFailed(path, err)
	}
	return doc, nil
}

// Parse decodes TOML text into a Document. Keys within each table are
// ordered lexically since the decoder does not retain source order.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Document{root: tableFrom(raw)}, nil
}

// Encode serializes the document to TOML text.
func (d *Document) Encode() ([]byte, error) {
	raw, err := d.root.toMap(nil)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tableFrom(raw map[string]any) *Table {
	t := NewTable()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.Set(k, valueFrom(raw[k]))
	}
	return t
}

func valueFrom(v any) Value {
	switch x := v.(type) {
	case string:
		return StringValue(x)
	case map[string]any:
		return TableValue(tableFrom(x))
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = valueFrom(item)
		}
		return ArrayValue(items...)
	default:
		return ScalarValue(x)
	}
}

func (t *Table) toMap(path []string) (map[string]any, error) {
	out := make(map[string]any, len(t.keys))
	for _, k := range t.keys {
		v, err := t.values[k].toAny(append(path, k))
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (v Value) toAny(path []string) (any, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindTable:
		if v.table == nil {
			return map[string]any{}, nil
		}
		return v.table.toMap(path)
	case KindArray:
		out := make([]any, len(v.array))
		for i, item := range v.array {
			a, err := item.toAny(path)
			if err != nil {
				return nil, err
			}
			out[i] = a
		}
		return out, nil
	case KindScalar:
		if v.scalar == nil {
			return nil, cerrors.InternalError("nil scalar").WithContext("key", strings.Join(path, ".")).Build()
		}
		return v.scalar, nil
	default:
		return nil, cerrors.InternalError("invalid value").WithContext("key", strings.Join(path, ".")).Build()
	}
}
