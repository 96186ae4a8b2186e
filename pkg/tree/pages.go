package tree

import (
	"github.com/aretw0/pagecraft/pkg/domain"
)

// AssignPage tags a root node with a page id. An empty pageID clears the tag,
// putting the root back on the default page. Only roots can be assigned.
func (t *Tree) AssignPage(rootID, pageID string) bool {
	out := t.apply(func(cur []domain.Node, index map[string]int) outcome {
		i, ok := index[rootID]
		if !ok {
			return skipped(domain.DiagReferenceNotFound, "assign_page", rootID, "node does not exist")
		}
		if !cur[i].IsRoot() {
			return skipped(domain.DiagReferenceNotFound, "assign_page", rootID, "node is not a root")
		}
		next := make([]domain.Node, len(cur))
		copy(next, cur)
		n := next[i]
		n.Props = n.Props.Clone()
		if n.Props == nil {
			n.Props = domain.Props{}
		}
		if pageID == "" {
			delete(n.Props, domain.PropPageID)
		} else {
			n.Props[domain.PropPageID] = domain.String(pageID)
		}
		next[i] = n
		return outcome{
			changed: true,
			next:    next,
			event:   &domain.MutationEvent{Type: domain.EventPageAssigned, IDs: []string{rootID}},
		}
	})
	return out.changed
}

// PageOf returns the page of the root above id. Untagged roots, and ids that
// do not resolve, belong to the default page.
func (t *Tree) PageOf(id string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	root, ok := rootOf(t.nodes, t.index, id)
	if !ok {
		return domain.DefaultPageID
	}
	return t.nodes[t.index[root]].Page()
}

// Pages lists page ids in the order their first root appears.
func (t *Tree) Pages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, n := range t.nodes {
		if !n.IsRoot() {
			continue
		}
		p := n.Page()
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// RootsOnPage returns the roots tagged with pageID, in store order.
func (t *Tree) RootsOnPage(pageID string) []domain.Node {
	if pageID == "" {
		pageID = domain.DefaultPageID
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []domain.Node
	for _, n := range t.nodes {
		if n.IsRoot() && n.Page() == pageID {
			out = append(out, n.Clone())
		}
	}
	return out
}
