package domain

// TreeDiff represents the changes between two snapshots of a tree.
// It is designed to be serialized to JSON for partial updates on the client.
type TreeDiff struct {
	// DocumentID is always present to identify the target.
	DocumentID string `json:"document_id"`

	// Added holds nodes that did not exist in the old snapshot.
	Added []Node `json:"added,omitempty"`

	// Updated holds nodes whose type, props or parent changed.
	Updated []Node `json:"updated,omitempty"`

	// Removed lists ids that no longer exist.
	Removed []string `json:"removed,omitempty"`

	// Order carries the full id sequence when the relative order of the
	// surviving nodes changed. Clients replace their order with it.
	Order []string `json:"order,omitempty"`
}

// Diff calculates the difference between two node lists.
// It returns nil when nothing changed.
func Diff(documentID string, oldNodes, newNodes []Node) *TreeDiff {
	diff := &TreeDiff{DocumentID: documentID}

	oldByID := make(map[string]Node, len(oldNodes))
	for _, n := range oldNodes {
		oldByID[n.ID] = n
	}
	newIDs := make(map[string]bool, len(newNodes))

	for _, n := range newNodes {
		newIDs[n.ID] = true
		prev, ok := oldByID[n.ID]
		if !ok {
			diff.Added = append(diff.Added, n.Clone())
			continue
		}
		if !sameNode(prev, n) {
			diff.Updated = append(diff.Updated, n.Clone())
		}
	}
	for _, n := range oldNodes {
		if !newIDs[n.ID] {
			diff.Removed = append(diff.Removed, n.ID)
		}
	}

	// Compare the order of nodes present in both snapshots.
	var before, after []string
	for _, n := range oldNodes {
		if newIDs[n.ID] {
			before = append(before, n.ID)
		}
	}
	for _, n := range newNodes {
		if _, ok := oldByID[n.ID]; ok {
			after = append(after, n.ID)
		}
	}
	if !equalStrings(before, after) {
		diff.Order = make([]string, len(newNodes))
		for i, n := range newNodes {
			diff.Order[i] = n.ID
		}
	}

	if len(diff.Added) == 0 &&
		len(diff.Updated) == 0 &&
		len(diff.Removed) == 0 &&
		diff.Order == nil {
		return nil
	}
	return diff
}

func sameNode(a, b Node) bool {
	if a.Type != b.Type || a.ParentID != b.ParentID || len(a.Props) != len(b.Props) {
		return false
	}
	for k, v := range a.Props {
		w, ok := b.Props[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
