// Package serializer converts between persisted component documents and the
// canonical flat node list.
//
// Two component shapes are read: the legacy nested shape, where nodes carry a
// "children" array of further nodes, and the flat shape, where nodes carry a
// parentId and sibling order is list order. Only the flat shape is written.
package serializer

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// DecodeComponents turns a decoded "components" array into canonical nodes.
// Malformed entries are dropped and reported; decoding never fails as a whole.
func DecodeComponents(raw []any) ([]domain.Node, []domain.Diagnostic) {
	var diags []domain.Diagnostic
	drop := func(id, detail string) {
		diags = append(diags, domain.Diagnostic{
			Kind:   domain.DiagMalformedNode,
			Op:     "load",
			NodeID: id,
			Detail: detail,
		})
	}

	if IsLegacy(raw) {
		raw = flatten(raw)
	}

	nodes := make([]domain.Node, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			drop("", fmt.Sprintf("entry %d is not an object", i))
			continue
		}
		id, _ := obj["id"].(string)
		typ, _ := obj["type"].(string)
		switch {
		case id == "":
			drop("", fmt.Sprintf("entry %d has no string id", i))
			continue
		case allDigits(id):
			drop(id, "all-digit id")
			continue
		case typ == "":
			drop(id, "missing type")
			continue
		case seen[id]:
			drop(id, "duplicate id")
			continue
		}
		seen[id] = true

		props, _ := obj["props"].(map[string]any)
		parent, _ := obj["parentId"].(string)
		nodes = append(nodes, domain.Node{
			ID:       id,
			Type:     typ,
			Props:    domain.PropsFromMap(props).Canonical(),
			ParentID: parent,
		})
	}

	nodes = repairParents(nodes, &diags)
	return nodes, diags
}

// EncodeComponents writes nodes in the flat canonical shape.
func EncodeComponents(nodes []domain.Node) ([]byte, error) {
	data, err := json.Marshal(canonical(nodes))
	if err != nil {
		return nil, fmt.Errorf("encode components: %w", err)
	}
	return data, nil
}

func canonical(nodes []domain.Node) []domain.Node {
	out := make([]domain.Node, len(nodes))
	for i, n := range nodes {
		out[i] = domain.Node{
			ID:       n.ID,
			Type:     n.Type,
			Props:    n.Props.Canonical(),
			ParentID: n.ParentID,
		}
	}
	return out
}

// IsLegacy reports whether any entry carries a non-empty nested children array.
func IsLegacy(raw []any) bool {
	for _, entry := range raw {
		if obj, ok := entry.(map[string]any); ok && len(nestedChildren(obj)) > 0 {
			return true
		}
	}
	return false
}

// nestedChildren returns the child nodes of a legacy node: the "children"
// array first, then an array-valued "props.children".
func nestedChildren(obj map[string]any) []any {
	var kids []any
	if top, ok := obj["children"].([]any); ok {
		kids = append(kids, top...)
	}
	if props, ok := obj["props"].(map[string]any); ok {
		if nested, ok := props["children"].([]any); ok {
			kids = append(kids, nested...)
		}
	}
	return kids
}

// droppedContainer is the parentId given to children of a legacy container
// without an id, so they are promoted and reported like any other orphan.
const droppedContainer = "\x00container-without-id"

// flatten walks legacy entries depth-first. Every child takes the id of its
// immediate container as parentId; sibling order is the child array order.
func flatten(raw []any) []any {
	out := make([]any, 0, len(raw))
	var walk func(entry any, parent string, top bool)
	walk = func(entry any, parent string, top bool) {
		obj, ok := entry.(map[string]any)
		if !ok {
			out = append(out, entry)
			return
		}
		kids := nestedChildren(obj)

		flat := make(map[string]any, len(obj))
		for k, v := range obj {
			if k == "children" {
				continue
			}
			flat[k] = v
		}
		if props, ok := obj["props"].(map[string]any); ok {
			if _, nested := props["children"].([]any); nested {
				cp := make(map[string]any, len(props))
				for k, v := range props {
					if k != "children" {
						cp[k] = v
					}
				}
				flat["props"] = cp
			}
		}
		if !top {
			flat["parentId"] = parent
		}
		out = append(out, flat)

		id, _ := obj["id"].(string)
		if id == "" {
			id = droppedContainer
		}
		for _, kid := range kids {
			walk(kid, id, false)
		}
	}
	for _, entry := range raw {
		walk(entry, "", true)
	}
	return out
}

// repairParents promotes nodes whose parent is missing, or whose parent chain
// loops, to roots.
func repairParents(nodes []domain.Node, diags *[]domain.Diagnostic) []domain.Node {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}
	promote := func(i int, detail string) {
		*diags = append(*diags, domain.Diagnostic{
			Kind:   domain.DiagMalformedNode,
			Op:     "load",
			NodeID: nodes[i].ID,
			Detail: detail,
		})
		nodes[i].ParentID = ""
	}

	for i, n := range nodes {
		if n.ParentID == "" {
			continue
		}
		if n.ParentID == droppedContainer {
			promote(i, "enclosing container has no id")
			continue
		}
		if _, ok := index[n.ParentID]; !ok {
			promote(i, fmt.Sprintf("parent %s does not exist", n.ParentID))
		}
	}
	for i := range nodes {
		cur := nodes[i].ParentID
		for steps := 0; cur != "" && steps <= len(nodes); steps++ {
			if cur == nodes[i].ID {
				promote(i, "parent chain forms a cycle")
				break
			}
			cur = nodes[index[cur]].ParentID
		}
	}
	return nodes
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
