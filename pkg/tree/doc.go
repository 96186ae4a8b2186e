/*
Package tree holds the canonical component tree of one document and the
operations that edit it.

Nodes live in a single ordered slice (the arena) with an id index; parent links
are plain ids. Sibling order is the order of the slice. Every mutation computes a
new slice against one snapshot and swaps it in a single step, so readers never
observe a half-applied change.

Operations that target missing nodes, or that would introduce a parent cycle, are
skipped: they log a warning and report a domain.Diagnostic through the lifecycle
hooks instead of returning an error.
*/
package tree
