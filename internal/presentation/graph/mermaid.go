package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// Overlay marks nodes to highlight on the diagram.
type Overlay struct {
	Highlight []string
}

// maxLabelText bounds the text excerpt shown in a node label.
const maxLabelText = 24

// GenerateMermaid produces a Mermaid flowchart of the component tree. Edges
// run from parent to child in child order. Shapes follow the element kind:
//   - Root: [[Subroutine]]
//   - Text-bearing leaf: (Rounded)
//   - Chart: [(Database)]
//   - Default: [Rectangle]
func GenerateMermaid(nodes []domain.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	hasChildren := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ParentID != "" {
			hasChildren[n.ParentID] = true
		}
	}

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)
		text := node.Props.Text(domain.PropChildren)

		opener, closer := "[", "]"
		switch {
		case node.IsRoot():
			opener, closer = "[[", "]]"
		case node.Type == domain.TypeChart:
			opener, closer = "[(", ")]"
		case text != "" && !hasChildren[node.ID]:
			opener, closer = "(", ")"
		}

		label := node.Type + " #" + node.ID
		if text != "" {
			label += "<br/>" + excerpt(text)
		}
		if node.IsRoot() && node.Page() != domain.DefaultPageID {
			label += "<br/>page: " + node.Page()
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer)
	}

	for _, node := range nodes {
		if node.ParentID != "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(node.ParentID), sanitizeMermaidID(node.ID))
		}
	}

	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// color:#000 keeps labels readable on both themes
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		seen := make(map[string]bool)
		for _, id := range overlay.Highlight {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s highlight;\n", safeID)
		}
	}

	return sb.String()
}

func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > maxLabelText {
		return string(r[:maxLabelText-1]) + "…"
	}
	return text
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
