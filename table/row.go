package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Row is an ordered mapping from column key to value. Values are strings,
// numbers (float64, int types or json.Number), bools, nil, or decoded JSON
// composites. A Row is immutable once built.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow builds a Row from alternating key/value arguments, in the manner of
// slog attributes. A trailing key without a value maps to nil.
func NewRow(kv ...any) Row {
	r := Row{values: make(map[string]any, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		var val any
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		r.set(key, val)
	}
	return r
}

// FromMap builds a Row from m with keys in sorted order.
func FromMap(m map[string]any) Row {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := Row{keys: keys, values: make(map[string]any, len(m))}
	for k, v := range m {
		r.values[k] = v
	}
	return r
}

func (r *Row) set(key string, val any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = val
}

// Keys returns the row's keys in insertion order.
func (r Row) Keys() []string {
	return slices.Clone(r.keys)
}

// Len returns the number of keys.
func (r Row) Len() int {
	return len(r.keys)
}

// Get returns the value for key. ok is false when the key is missing or null.
func (r Row) Get(key string) (any, bool) {
	v, exists := r.values[key]
	if !exists || v == nil {
		return nil, false
	}
	return v, true
}

// Value returns the value for key, or nil when absent.
func (r Row) Value(key string) any {
	return r.values[key]
}

// Map returns a copy of the row as a plain map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the row as an object with keys in row order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, err := marshalValue(r.values[key])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %q: %w", key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping its key order. Numbers are
// kept as json.Number so large integers survive unchanged.
func (r *Row) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: row must be a JSON object", ErrInvalidPayload)
	}

	*r = Row{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected token %v", ErrInvalidPayload, tok)
		}

		var val any
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("failed to decode %q: %w", key, err)
		}
		r.set(key, val)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
