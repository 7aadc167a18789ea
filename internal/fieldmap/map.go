package fieldmap

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Entry struct {
	Key   string
	Value Value
}

// Map is an insertion-ordered mapping from field name to Value. Setting an
// existing key replaces its value in place. The zero Map is empty and ready
// to use.
type Map struct {
	entries []Entry
}

func FromEntries(entries ...Entry) Map {
	var m Map
	for _, entry := range entries {
		m.Set(entry.Key, entry.Value)
	}
	return m
}

func (m *Map) Set(key string, value Value) {
	for i := range m.entries {
		if m.entries[i].Key == key {
			m.entries[i].Value = value
			return
		}
	}
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

func (m Map) Get(key string) (Value, bool) {
	for _, entry := range m.entries {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return Value{}, false
}

func (m Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m Map) Len() int { return len(m.entries) }

func (m Map) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		keys = append(keys, entry.Key)
	}
	return keys
}

func (m Map) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m Map) Clone() Map {
	return Map{entries: m.Entries()}
}

func (m Map) Equal(other Map) bool {
	if len(m.entries) != len(other.entries) {
		return false
	}
	for i, entry := range m.entries {
		if other.entries[i].Key != entry.Key || !other.entries[i].Value.Equal(entry.Value) {
			return false
		}
	}
	return true
}

func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		value, err := entry.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object, keeping key order. A JSON null
// decodes to an empty map. Duplicate keys keep their first position and the
// last value.
func (m *Map) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	token, err := decoder.Token()
	if err != nil {
		return fmt.Errorf("decode field map: %w", err)
	}
	if token == nil {
		*m = Map{}
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode field map: expected object")
	}

	var out Map
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("decode field map: %w", err)
		}
		key, ok := keyToken.(string)
		if !ok {
			return fmt.Errorf("decode field map: expected key")
		}
		valueToken, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("decode field %q: %w", key, err)
		}
		value, err := valueFromToken(valueToken)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := decoder.Token(); err != nil {
		return fmt.Errorf("decode field map: %w", err)
	}
	*m = out
	return nil
}

// Value stores the map as JSON text. Columns should be JSON rather than
// JSONB, which does not preserve key order.
func (m Map) Value() (driver.Value, error) {
	data, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *Map) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Map{}
		return nil
	case []byte:
		return m.UnmarshalJSON(v)
	case string:
		return m.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("scan field map: unsupported type %T", src)
	}
}
