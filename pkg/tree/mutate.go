package tree

import (
	"fmt"

	"github.com/aretw0/pagecraft/pkg/domain"
)

// outcome is what a mutation computed against one snapshot.
type outcome struct {
	changed bool
	next    []domain.Node
	event   *domain.MutationEvent
	diag    *domain.Diagnostic
	err     error
}

func skipped(kind domain.DiagnosticKind, op, id, detail string) outcome {
	return outcome{diag: &domain.Diagnostic{Kind: kind, Op: op, NodeID: id, Detail: detail}}
}

// apply runs fn under the write lock and swaps in its result. Hooks run after
// the lock is released so they may read or mutate the tree.
func (t *Tree) apply(fn func(cur []domain.Node, index map[string]int) outcome) outcome {
	t.mu.Lock()
	out := fn(t.nodes, t.index)
	if out.changed {
		t.nodes = out.next
		t.index = buildIndex(out.next)
		if out.event != nil {
			out.event.Timestamp = t.now()
			out.event.Size = len(out.next)
		}
	}
	t.mu.Unlock()

	if out.diag != nil {
		t.diagnose(out.diag)
	}
	if out.changed && out.event != nil {
		t.logger.Debug("tree mutated", "event", out.event.Type, "ids", out.event.IDs, "size", out.event.Size)
		if t.hooks.OnMutation != nil {
			t.hooks.OnMutation(out.event)
		}
	}
	return out
}

func (t *Tree) diagnose(d *domain.Diagnostic) {
	t.logger.Warn("tree operation skipped",
		"op", d.Op,
		"kind", d.Kind,
		"node_id", d.NodeID,
		"detail", d.Detail,
	)
	if t.hooks.OnDiagnostic != nil {
		t.hooks.OnDiagnostic(d)
	}
}

// Add appends node under parentID (empty for a root). The id must be new.
func (t *Tree) Add(node domain.Node, parentID string) error {
	node.ParentID = parentID
	out := t.apply(func(cur []domain.Node, index map[string]int) outcome {
		next, err := appendChecked(cur, index, []domain.Node{node})
		if err != nil {
			return outcome{err: err}
		}
		return outcome{
			changed: true,
			next:    next,
			event:   &domain.MutationEvent{Type: domain.EventNodeAdded, IDs: []string{node.ID}},
		}
	})
	return out.err
}

// Append adds a batch of nodes in one step. Either every node is added or none is.
func (t *Tree) Append(batch []domain.Node) error {
	if len(batch) == 0 {
		return nil
	}
	out := t.apply(func(cur []domain.Node, index map[string]int) outcome {
		next, err := appendChecked(cur, index, batch)
		if err != nil {
			return outcome{err: err}
		}
		ids := make([]string, len(batch))
		for i, n := range batch {
			ids[i] = n.ID
		}
		return outcome{
			changed: true,
			next:    next,
			event:   &domain.MutationEvent{Type: domain.EventBatchApplied, IDs: ids},
		}
	})
	return out.err
}

// Replace swaps the whole tree for nodes. The input must already satisfy the
// tree invariants; it is rejected unchanged otherwise.
func (t *Tree) Replace(nodes []domain.Node) error {
	out := t.apply(func(_ []domain.Node, _ map[string]int) outcome {
		next, err := appendChecked(nil, map[string]int{}, nodes)
		if err != nil {
			return outcome{err: err}
		}
		return outcome{
			changed: true,
			next:    next,
			event:   &domain.MutationEvent{Type: domain.EventTreeReplaced},
		}
	})
	return out.err
}

// appendChecked validates batch against cur and returns cur+batch as a new
// slice. Parents may point into cur or earlier/later batch entries.
func appendChecked(cur []domain.Node, index map[string]int, batch []domain.Node) ([]domain.Node, error) {
	next := make([]domain.Node, 0, len(cur)+len(batch))
	next = append(next, cur...)
	combined := make(map[string]int, len(cur)+len(batch))
	for id, i := range index {
		combined[id] = i
	}

	for _, n := range batch {
		if n.ID == "" || n.Type == "" {
			return nil, fmt.Errorf("%w: id and type are required (id=%q)", domain.ErrInvalidNode, n.ID)
		}
		if _, dup := combined[n.ID]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateID, n.ID)
		}
		c := n.Clone()
		c.Props = c.Props.Canonical()
		combined[c.ID] = len(next)
		next = append(next, c)
	}

	for _, n := range next[len(cur):] {
		if n.ParentID == "" {
			continue
		}
		if n.ParentID == n.ID {
			return nil, fmt.Errorf("%w: %s is its own parent", domain.ErrCycle, n.ID)
		}
		if _, ok := combined[n.ParentID]; !ok {
			return nil, fmt.Errorf("%w: parent %s of %s", domain.ErrNodeNotFound, n.ParentID, n.ID)
		}
		if isDescendant(next, combined, n.ParentID, n.ID) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCycle, n.ID)
		}
	}
	return next, nil
}

// Update merges patch into the node with the given id. Props overwrite per
// key, the style map merges per CSS key, and Null values delete. It reports
// false when the id is unknown.
func (t *Tree) Update(id string, patch domain.NodePatch) bool {
	out := t.apply(func(cur []domain.Node, index map[string]int) outcome {
		i, ok := index[id]
		if !ok {
			return skipped(domain.DiagReferenceNotFound, "update", id, "node does not exist")
		}
		next := make([]domain.Node, len(cur))
		copy(next, cur)

		n := next[i]
		if patch.Type != "" {
			n.Type = patch.Type
		}
		n.Props = mergeProps(n.Props, patch.Props)
		next[i] = n

		return outcome{
			changed: true,
			next:    next,
			event:   &domain.MutationEvent{Type: domain.EventNodeUpdated, IDs: []string{id}},
		}
	})
	return out.changed
}

func mergeProps(current, patch domain.Props) domain.Props {
	out := current.Clone()
	if out == nil {
		out = domain.Props{}
	}
	for k, v := range patch {
		switch {
		case v.IsNull():
			delete(out, k)
		case v.IsNodes():
			// transient input, never stored
		case k == domain.PropStyle && v.Kind() == domain.KindStyle:
			out[k] = domain.StyleValue(mergeStyle(out.Style(), v.StyleMap()))
		default:
			out[k] = v.Clone()
		}
	}
	return out
}

// mergeStyle overlays patch on base; an empty value (null in JSON) removes the CSS key.
func mergeStyle(base, patch domain.Style) domain.Style {
	merged := base.Clone()
	if merged == nil {
		merged = domain.Style{}
	}
	for k, v := range patch {
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

// Delete removes id and its whole subtree in one step and returns the removed
// ids in store order. It returns nil when id is unknown.
func (t *Tree) Delete(id string) []string {
	var removed []string
	t.apply(func(cur []domain.Node, index map[string]int) outcome {
		if _, ok := index[id]; !ok {
			return skipped(domain.DiagReferenceNotFound, "delete", id, "node does not exist")
		}
		doomed := subtreeSet(cur, id)
		next := make([]domain.Node, 0, len(cur)-len(doomed))
		for _, n := range cur {
			if doomed[n.ID] {
				removed = append(removed, n.ID)
				continue
			}
			next = append(next, n)
		}
		return outcome{
			changed: true,
			next:    next,
			event:   &domain.MutationEvent{Type: domain.EventNodesRemoved, IDs: removed},
		}
	})
	return removed
}

// Reorder moves dragged relative to target. "inside" reparents dragged under
// target. "before" and "after" make dragged a sibling of target and place it
// immediately next to it in the list. It reports false when nothing moved.
func (t *Tree) Reorder(draggedID, targetID string, pos domain.Position) bool {
	out := t.apply(func(cur []domain.Node, index map[string]int) outcome {
		if !pos.Valid() {
			return skipped(domain.DiagMalformedNode, "reorder", draggedID, fmt.Sprintf("unknown position %q", pos))
		}
		di, ok := index[draggedID]
		if !ok {
			return skipped(domain.DiagReferenceNotFound, "reorder", draggedID, "dragged node does not exist")
		}
		ti, ok := index[targetID]
		if !ok {
			return skipped(domain.DiagReferenceNotFound, "reorder", targetID, "target node does not exist")
		}

		event := &domain.MutationEvent{Type: domain.EventNodeMoved, IDs: []string{draggedID}}

		if pos == domain.PositionInside {
			if targetID == draggedID || isDescendant(cur, index, targetID, draggedID) {
				return skipped(domain.DiagCycleViolation, "reorder", draggedID,
					fmt.Sprintf("%s cannot be placed inside %s", draggedID, targetID))
			}
			next := make([]domain.Node, len(cur))
			copy(next, cur)
			next[di].ParentID = targetID
			return outcome{changed: true, next: next, event: event}
		}

		newParent := cur[ti].ParentID
		if newParent != "" && (newParent == draggedID || isDescendant(cur, index, newParent, draggedID)) {
			return skipped(domain.DiagCycleViolation, "reorder", draggedID,
				fmt.Sprintf("%s cannot become a sibling of its own descendant %s", draggedID, targetID))
		}

		moved := cur[di]
		moved.ParentID = newParent

		reduced := make([]domain.Node, 0, len(cur))
		reduced = append(reduced, cur[:di]...)
		reduced = append(reduced, cur[di+1:]...)

		at := -1
		for i, n := range reduced {
			if n.ID == targetID {
				at = i
				break
			}
		}
		if at < 0 {
			return skipped(domain.DiagTargetLost, "reorder", targetID, "target not found after removing dragged node")
		}
		if pos == domain.PositionAfter {
			at++
		}

		next := make([]domain.Node, 0, len(cur))
		next = append(next, reduced[:at]...)
		next = append(next, moved)
		next = append(next, reduced[at:]...)
		return outcome{changed: true, next: next, event: event}
	})
	return out.changed
}
