package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind enumerates the closed set of shapes a prop value can take.
type Kind uint8

const (
	// KindNull is the "absent" sentinel. In an update patch it deletes the key.
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	// KindStyle is a flat string-to-string map (CSS property -> value).
	KindStyle
	// KindNodes is a list of raw, not yet canonical node objects.
	// It only exists on input (legacy documents, import batches) and is
	// stripped before anything reaches the tree.
	KindNodes
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindStyle:
		return "style"
	case KindNodes:
		return "nodes"
	default:
		return "unknown"
	}
}

// Style maps CSS property keys (usually camelCase) to values.
type Style map[string]string

// Clone returns an independent copy of the style map.
func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Value is a single prop value. The zero Value is Null.
type Value struct {
	kind  Kind
	str   string
	num   float64
	flag  bool
	style Style
	nodes []any
}

// Null returns the absent sentinel.
func Null() Value { return Value{} }

// String wraps a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// StyleValue wraps a style map. The map is copied.
func StyleValue(s Style) Value { return Value{kind: KindStyle, style: s.Clone()} }

// Nodes wraps a transient list of raw node objects.
func Nodes(raw []any) Value { return Value{kind: KindNodes, nodes: raw} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) IsNodes() bool { return v.kind == KindNodes }
func (v Value) Str() string { return v.str }
func (v Value) Num() float64 { return v.num }
func (v Value) Flag() bool { return v.flag }
func (v Value) RawNodes() []any { return v.nodes }

// StyleMap returns a copy of the style map (nil for other kinds).
func (v Value) StyleMap() Style { return v.style.Clone() }

// AsString renders scalar values as text. Style and node lists yield "".
func (v Value) AsString() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// Clone deep-copies the value.
func (v Value) Clone() Value {
	out := v
	out.style = v.style.Clone()
	if v.nodes != nil {
		out.nodes = append([]any(nil), v.nodes...)
	}
	return out
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.flag == o.flag
	case KindStyle:
		if len(v.style) != len(o.style) {
			return false
		}
		for k, s := range v.style {
			if t, ok := o.style[k]; !ok || t != s {
				return false
			}
		}
		return true
	case KindNodes:
		a, _ := json.Marshal(v.nodes)
		b, _ := json.Marshal(o.nodes)
		return bytes.Equal(a, b)
	default:
		return true
	}
}

// ValueOf converts a decoded JSON/YAML value into a Value.
// Objects become style maps (non-string entries are formatted, nulls become ""),
// arrays become transient node lists.
func ValueOf(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return String(x.String())
		}
		return Number(f)
	case map[string]string:
		return StyleValue(Style(x))
	case Style:
		return StyleValue(x)
	case map[string]any:
		s := make(Style, len(x))
		for k, e := range x {
			// nil becomes "", the delete marker of a style patch.
			s[k] = ValueOf(e).AsString()
		}
		return Value{kind: KindStyle, style: s}
	case []any:
		return Nodes(x)
	default:
		return String(fmt.Sprint(x))
	}
}

// Interface converts the value back into plain JSON-compatible Go data.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindStyle:
		out := make(map[string]any, len(v.style))
		for k, s := range v.style {
			out[k] = s
		}
		return out
	case KindNodes:
		return v.nodes
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	case KindStyle:
		keys := make([]string, 0, len(v.style))
		for k := range v.style {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			vb, _ := json.Marshal(v.style[k])
			buf.Write(kb)
			buf.WriteByte(':')
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v.Interface())
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode prop value: %w", err)
	}
	*v = ValueOf(raw)
	return nil
}
