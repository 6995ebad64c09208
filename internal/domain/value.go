package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind enumerates the shapes a Value can take.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a tagged structured value: a scalar, an ordered list, or an
// ordered mapping. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	bl   bool
	list []Value
	m    Mapping
}

// Field is one key/value pair of a Mapping.
type Field struct {
	Key   string
	Value Value
}

// Mapping is an ordered string-keyed map. Keys keep insertion order.
type Mapping []Field

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int wraps i.
func Int(i int64) Value { return Value{kind: KindInt, num: i} }

// Float wraps f.
func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, bl: b} }

// List wraps the given items in order.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Map wraps m.
func Map(m Mapping) Value { return Value{kind: KindMap, m: m} }

// Kind reports the shape of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsBool returns the bool payload.
func (v Value) AsBool() (bool, bool) { return v.bl, v.kind == KindBool }

// AsNumber returns int and float payloads as float64.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.num), true
	case KindFloat:
		return v.flt, true
	}
	return 0, false
}

// Items returns the list payload, or nil for non-lists.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// AsMapping returns the mapping payload.
func (v Value) AsMapping() (Mapping, bool) { return v.m, v.kind == KindMap }

// IsComposite reports whether v is a list or a mapping.
func (v Value) IsComposite() bool { return v.kind == KindList || v.kind == KindMap }

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i, it := range v.list {
			items[i] = it.Clone()
		}
		return Value{kind: KindList, list: items}
	case KindMap:
		return Value{kind: KindMap, m: v.m.Clone()}
	}
	return v
}

// Text renders scalars as plain text and composites as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return formatFloat(v.flt)
	case KindBool:
		return strconv.FormatBool(v.bl)
	}
	return v.CompactJSON()
}

// CompactJSON renders v as JSON with ", " and ": " separators and keys in
// mapping order. The output is stable for a given value.
func (v Value) CompactJSON() string {
	var buf bytes.Buffer
	v.appendJSON(&buf, ", ", ": ")
	return buf.String()
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.appendJSON(&buf, ",", ":")
	return buf.Bytes(), nil
}

func (v Value) appendJSON(buf *bytes.Buffer, itemSep, keySep string) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		writeJSONString(buf, v.str)
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.num, 10))
	case KindFloat:
		if math.IsNaN(v.flt) || math.IsInf(v.flt, 0) {
			buf.WriteString("null")
			return
		}
		buf.WriteString(formatFloat(v.flt))
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.bl))
	case KindList:
		buf.WriteByte('[')
		for i, it := range v.list {
			if i > 0 {
				buf.WriteString(itemSep)
			}
			it.appendJSON(buf, itemSep, keySep)
		}
		buf.WriteByte(']')
	case KindMap:
		v.m.appendJSON(buf, itemSep, keySep)
	}
}

// UnmarshalJSON decodes any JSON value, keeping object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	val, err := decodeJSONValue(dec)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// UnmarshalYAML decodes any YAML node, keeping mapping key order.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	val, err := decodeYAMLNode(node)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// MappingOf builds a Mapping from alternating keys and values. Values are
// converted with FromAny.
func MappingOf(pairs ...any) Mapping {
	m := make(Mapping, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key := fmt.Sprint(pairs[i])
		m = m.With(key, FromAny(pairs[i+1]))
	}
	return m
}

// Get returns the value stored under key.
func (m Mapping) Get(key string) (Value, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// With returns m with key set to v. Existing keys keep their position.
func (m Mapping) With(key string, v Value) Mapping {
	for i, f := range m {
		if f.Key == key {
			out := m.Clone()
			out[i].Value = v
			return out
		}
	}
	return append(m, Field{Key: key, Value: v})
}

// Keys returns the keys in order.
func (m Mapping) Keys() []string {
	keys := make([]string, len(m))
	for i, f := range m {
		keys[i] = f.Key
	}
	return keys
}

// Clone returns a deep copy of m.
func (m Mapping) Clone() Mapping {
	if m == nil {
		return nil
	}
	out := make(Mapping, len(m))
	for i, f := range m {
		out[i] = Field{Key: f.Key, Value: f.Value.Clone()}
	}
	return out
}

// MarshalJSON implements json.Marshaler. A nil Mapping encodes as {}.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	m.appendJSON(&buf, ",", ":")
	return buf.Bytes(), nil
}

func (m Mapping) appendJSON(buf *bytes.Buffer, itemSep, keySep string) {
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteString(itemSep)
		}
		writeJSONString(buf, f.Key)
		buf.WriteString(keySep)
		f.Value.appendJSON(buf, itemSep, keySep)
	}
	buf.WriteByte('}')
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	switch v.kind {
	case KindMap:
		*m = v.m
	case KindNull:
		*m = nil
	default:
		return fmt.Errorf("expected JSON object, got %s", v.kind)
	}
	return nil
}

// UnmarshalYAML decodes a YAML mapping, keeping key order.
func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeYAMLNode(node)
	if err != nil {
		return err
	}
	switch v.kind {
	case KindMap:
		*m = v.m
	case KindNull:
		*m = nil
	default:
		return fmt.Errorf("line %d: expected mapping, got %s", node.Line, v.kind)
	}
	return nil
}

// FromAny converts plain Go values (as produced by encoding/json or literals)
// into a Value. Go maps carry no order, so their keys are sorted.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case Mapping:
		return Map(t)
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Int(int64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		if t > math.MaxInt64 {
			return Float(float64(t))
		}
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		return numberValue(t.String())
	case []Value:
		return List(t...)
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = String(s)
		}
		return List(items...)
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = FromAny(it)
		}
		return List(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := make(Mapping, len(keys))
		for i, k := range keys {
			m[i] = Field{Key: k, Value: FromAny(t[k])}
		}
		return Map(m)
	case fmt.Stringer:
		return String(t.String())
	}
	return String(fmt.Sprint(x))
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return numberValue(t.String()), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				it, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, it)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return List(items...), nil
		case '{':
			m := Mapping{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				m = m.With(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Map(m), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

func decodeYAMLNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case 0:
		return Null(), nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return decodeYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return decodeYAMLNode(node.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, c := range node.Content {
			it, err := decodeYAMLNode(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, it)
		}
		return List(items...), nil
	case yaml.MappingNode:
		m := make(Mapping, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := decodeYAMLNode(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			m = m.With(node.Content[i].Value, val)
		}
		return Map(m), nil
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return Null(), nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return Value{}, err
			}
			return Bool(b), nil
		case "!!int":
			var i int64
			if err := node.Decode(&i); err != nil {
				var f float64
				if ferr := node.Decode(&f); ferr != nil {
					return Value{}, err
				}
				return Float(f), nil
			}
			return Int(i), nil
		case "!!float":
			var f float64
			if err := node.Decode(&f); err != nil {
				return Value{}, err
			}
			return Float(f), nil
		}
		return String(node.Value), nil
	}
	return Value{}, fmt.Errorf("line %d: unsupported yaml node kind %d", node.Line, node.Kind)
}

func numberValue(s string) Value {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return String(s)
	}
	return Float(f)
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func writeJSONString(buf *bytes.Buffer, s string) {
	const hex = "0123456789abcdef"
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hex[r>>4])
				buf.WriteByte(hex[r&0xf])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
