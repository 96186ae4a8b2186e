package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// Outline renders the component tree as a nested markdown list, one section
// per page. Children follow store order.
func Outline(nodes []domain.Node) string {
	children := make(map[string][]domain.Node)
	var pages []string
	roots := make(map[string][]domain.Node)
	for _, n := range nodes {
		if !n.IsRoot() {
			children[n.ParentID] = append(children[n.ParentID], n)
			continue
		}
		p := n.Page()
		if _, ok := roots[p]; !ok {
			pages = append(pages, p)
		}
		roots[p] = append(roots[p], n)
	}

	var sb strings.Builder
	visited := make(map[string]bool, len(nodes))
	var walk func(n domain.Node, depth int)
	walk = func(n domain.Node, depth int) {
		if visited[n.ID] {
			return
		}
		visited[n.ID] = true
		fmt.Fprintf(&sb, "%s- `%s` **%s**", strings.Repeat("  ", depth), n.Type, n.ID)
		if text := n.Props.Text(domain.PropChildren); text != "" {
			fmt.Fprintf(&sb, ": %s", strings.Join(strings.Fields(text), " "))
		}
		if style := n.Props.Style(); len(style) > 0 {
			fmt.Fprintf(&sb, " _(%d style rules)_", len(style))
		}
		sb.WriteString("\n")
		for _, c := range children[n.ID] {
			walk(c, depth+1)
		}
	}

	for _, p := range pages {
		fmt.Fprintf(&sb, "## Page `%s`\n\n", p)
		for _, r := range roots[p] {
			walk(r, 0)
		}
		sb.WriteString("\n")
	}
	if len(pages) == 0 {
		sb.WriteString("_empty document_\n")
	}
	return sb.String()
}
