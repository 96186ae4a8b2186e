package domain

import "time"

// EventType names a committed change to the tree.
type EventType string

const (
	EventNodeAdded    EventType = "node_added"
	EventNodeUpdated  EventType = "node_updated"
	EventNodesRemoved EventType = "nodes_removed"
	EventNodeMoved    EventType = "node_moved"
	EventBatchApplied EventType = "batch_applied"
	EventTreeReplaced EventType = "tree_replaced"
	EventPageAssigned EventType = "page_assigned"
)

// MutationEvent describes a mutation after it has been committed.
type MutationEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	// IDs lists the affected node ids (the removed set for deletes, the new
	// ids for batches).
	IDs []string `json:"ids,omitempty"`
	// Size is the node count after the mutation.
	Size int `json:"size"`
}

// DiagnosticKind classifies an absorbed, node-local failure.
type DiagnosticKind string

const (
	DiagReferenceNotFound    DiagnosticKind = "reference_not_found"
	DiagCycleViolation       DiagnosticKind = "cycle_violation"
	DiagMalformedNode        DiagnosticKind = "malformed_node"
	DiagImportShapeAmbiguous DiagnosticKind = "import_shape_ambiguous"
	DiagTargetLost           DiagnosticKind = "target_lost"
)

// Diagnostic reports an operation that was skipped or repaired instead of failing.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Op     string         `json:"op"`
	NodeID string         `json:"node_id,omitempty"`
	Detail string         `json:"detail,omitempty"`
}

// LifecycleHooks receives notifications from the tree. Hooks run after the
// state swap, outside any lock.
type LifecycleHooks struct {
	OnMutation   func(*MutationEvent)
	OnDiagnostic func(*Diagnostic)
}

// Merge chains two hook sets; both are called, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	out := h
	if other.OnMutation != nil {
		if h.OnMutation == nil {
			out.OnMutation = other.OnMutation
		} else {
			first, second := h.OnMutation, other.OnMutation
			out.OnMutation = func(e *MutationEvent) { first(e); second(e) }
		}
	}
	if other.OnDiagnostic != nil {
		if h.OnDiagnostic == nil {
			out.OnDiagnostic = other.OnDiagnostic
		} else {
			first, second := h.OnDiagnostic, other.OnDiagnostic
			out.OnDiagnostic = func(d *Diagnostic) { first(d); second(d) }
		}
	}
	return out
}
