// Package render turns a canonical node list into HTML markup.
//
// Rendering is a pure function of the input: a node's children are the nodes
// whose parent is it, in list order, and the roots are rendered in list order
// one after another with no separators.
package render

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// HTML renders every root of nodes.
func HTML(nodes []domain.Node) string {
	return renderRoots(nodes, func(domain.Node) bool { return true })
}

// Page renders only the roots assigned to pageID ("" means the default page).
func Page(nodes []domain.Node, pageID string) string {
	if pageID == "" {
		pageID = domain.DefaultPageID
	}
	return renderRoots(nodes, func(n domain.Node) bool { return n.Page() == pageID })
}

// Node renders the subtree rooted at id, or "" if id is absent.
func Node(nodes []domain.Node, id string) string {
	r := newRenderer(nodes)
	for i, n := range nodes {
		if n.ID == id {
			r.write(i)
			break
		}
	}
	return r.b.String()
}

func renderRoots(nodes []domain.Node, keep func(domain.Node) bool) string {
	r := newRenderer(nodes)
	for i, n := range nodes {
		if n.IsRoot() && keep(n) {
			r.write(i)
		}
	}
	return r.b.String()
}

type renderer struct {
	nodes    []domain.Node
	children map[string][]int
	visited  map[int]bool
	b        strings.Builder
}

func newRenderer(nodes []domain.Node) *renderer {
	children := make(map[string][]int)
	for i, n := range nodes {
		if n.ParentID != "" {
			children[n.ParentID] = append(children[n.ParentID], i)
		}
	}
	return &renderer{nodes: nodes, children: children, visited: make(map[int]bool)}
}

func (r *renderer) write(i int) {
	if r.visited[i] {
		return
	}
	r.visited[i] = true

	n := r.nodes[i]
	tag := Tag(n.Type)

	r.b.WriteByte('<')
	r.b.WriteString(tag)
	writeAttrs(&r.b, tag, n.Props)
	if voidTags[tag] {
		r.b.WriteString(" />")
		return
	}
	r.b.WriteByte('>')

	if text := n.Props.Text(domain.PropChildren); text != "" {
		r.b.WriteString(html.EscapeString(text))
	}
	for _, c := range r.children[n.ID] {
		r.write(c)
	}

	fmt.Fprintf(&r.b, "</%s>", tag)
}

func writeAttrs(b *strings.Builder, tag string, props domain.Props) {
	if class := props.Text(domain.PropClassName); class != "" {
		writeAttr(b, "class", class)
	}
	for _, key := range elementAttrs[tag] {
		if v, ok := props[key]; ok && !v.IsNull() {
			writeAttr(b, key, v.AsString())
		}
	}
	if css := Style(props.Style()); css != "" {
		writeAttr(b, "style", css)
	}
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteByte('"')
}

// Style serializes a style map as "key: value;" pairs with sorted, kebab-case
// keys. Empty values are skipped.
func Style(style domain.Style) string {
	keys := make([]string, 0, len(style))
	for k, v := range style {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = CSSProperty(k) + ": " + style[k] + ";"
	}
	return strings.Join(parts, " ")
}

// CSSProperty converts a camelCase style key to its CSS name:
// fontSize -> font-size, WebkitTransition -> -webkit-transition,
// msFlex -> -ms-flex. Custom properties (--x) are kept as is.
func CSSProperty(key string) string {
	if strings.HasPrefix(key, "--") {
		return key
	}
	var b strings.Builder
	if len(key) > 2 && strings.HasPrefix(key, "ms") && unicode.IsUpper(rune(key[2])) {
		b.WriteByte('-')
	}
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Document wraps markup and CSS into a standalone HTML page.
func Document(markup, css, title string) string {
	if title == "" {
		title = "Preview"
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	if css != "" {
		fmt.Fprintf(&b, "<style>%s</style>\n", strings.ReplaceAll(css, "</style", `<\/style`))
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(markup)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
