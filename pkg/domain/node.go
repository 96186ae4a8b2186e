package domain

import (
	"encoding/json"
	"sort"
)

// Props is the property bag of a node.
type Props map[string]Value

// PropsFromMap converts decoded JSON/YAML data into Props.
func PropsFromMap(m map[string]any) Props {
	if m == nil {
		return nil
	}
	p := make(Props, len(m))
	for k, v := range m {
		p[k] = ValueOf(v)
	}
	return p
}

// Clone deep-copies the bag, style maps included.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v.Clone()
	}
	return out
}

// Canonical returns a deep copy without transient node lists, null entries
// and empty style values. This is the only shape allowed inside the tree.
func (p Props) Canonical() Props {
	out := make(Props, len(p))
	for k, v := range p {
		switch {
		case v.IsNull() || v.IsNodes():
			continue
		case v.Kind() == KindStyle:
			style := v.StyleMap()
			for prop, val := range style {
				if val == "" {
					delete(style, prop)
				}
			}
			out[k] = Value{kind: KindStyle, style: style}
		default:
			out[k] = v.Clone()
		}
	}
	return out
}

// Text returns the string form of a scalar prop, or "".
func (p Props) Text(key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	return v.AsString()
}

// Style returns a copy of the style map (never nil).
func (p Props) Style() Style {
	if v, ok := p[PropStyle]; ok && v.Kind() == KindStyle {
		if s := v.StyleMap(); s != nil {
			return s
		}
	}
	return Style{}
}

// Keys returns the prop keys in sorted order.
func (p Props) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map converts the bag back into plain data.
func (p Props) Map() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Interface()
	}
	return out
}

// Node is one element descriptor in the document tree.
// An empty ParentID marks a root.
type Node struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Props    Props  `json:"props"`
	ParentID string `json:"parentId,omitempty"`
}

// Page returns the page tag of a root node, or DefaultPageID when untagged.
func (n Node) Page() string {
	if p := n.Props.Text(PropPageID); p != "" {
		return p
	}
	return DefaultPageID
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool { return n.ParentID == "" }

// Clone deep-copies the node.
func (n Node) Clone() Node {
	n.Props = n.Props.Clone()
	return n
}

// MarshalJSON always emits a props object, so saved documents have one shape.
func (n Node) MarshalJSON() ([]byte, error) {
	type alias Node
	a := alias(n)
	if a.Props == nil {
		a.Props = Props{}
	}
	return json.Marshal(a)
}

// NodePatch is a partial node used by updates. A non-empty Type overwrites the
// node type; Props are merged into the existing bag.
type NodePatch struct {
	Type  string `json:"type,omitempty"`
	Props Props  `json:"props,omitempty"`
}
