package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/render"
	"github.com/aretw0/pagecraft/pkg/serializer"
)

// Warning flags a node that loads fine but will likely render badly.
type Warning struct {
	NodeID string `json:"node_id"`
	Detail string `json:"detail"`
}

// Report describes the health of one saved document.
type Report struct {
	Version    int  `json:"version"`
	Migrated   bool `json:"migrated"`
	Components int  `json:"components"`
	// Repaired lists entries that loading would drop or fix up.
	Repaired []domain.Diagnostic `json:"repaired,omitempty"`
	Warnings []Warning           `json:"warnings,omitempty"`
}

// ValidateDocument decodes data the way the engine does and lints the result.
// The error is only set when data is not a document at all.
func ValidateDocument(data []byte) (*Report, error) {
	doc, diags, err := serializer.Decode(data)
	if err != nil {
		return nil, err
	}
	r := &Report{
		Version:    doc.Version,
		Migrated:   doc.Migrated,
		Components: len(doc.Components),
		Repaired:   diags,
	}
	for _, n := range doc.Components {
		r.Warnings = append(r.Warnings, lint(n)...)
	}
	return r, nil
}

func lint(n domain.Node) []Warning {
	var out []Warning
	warn := func(format string, args ...any) {
		out = append(out, Warning{NodeID: n.ID, Detail: fmt.Sprintf(format, args...)})
	}

	if !render.Known(n.Type) {
		warn("unknown type %q renders as div", n.Type)
	}
	switch render.Tag(n.Type) {
	case "img":
		if n.Props.Text("src") == "" {
			warn("image without src")
		}
	case "a":
		if n.Props.Text("href") == "" {
			warn("link without href")
		}
	}
	if !n.IsRoot() && n.Props.Text(domain.PropPageID) != "" {
		warn("pageId on a nested component is ignored")
	}
	return out
}

// Err summarizes the report as an error. Repairs always count; warnings only
// when strict is set.
func (r *Report) Err(strict bool) error {
	var problems []string
	for _, d := range r.Repaired {
		problems = append(problems, fmt.Sprintf("%s: %s %s", d.Kind, d.NodeID, d.Detail))
	}
	if strict {
		for _, w := range r.Warnings {
			problems = append(problems, fmt.Sprintf("%s: %s", w.NodeID, w.Detail))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}
