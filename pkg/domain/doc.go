/*
Package domain contains the core domain models of the pagecraft component tree.

It defines the element descriptors users assemble in the page builder, the closed
set of prop value shapes, and the events and diagnostics the tree reports. This
package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Node: One element descriptor (id, type, props, optional parent id).
  - Value: A prop value; string, number, bool, style map, or the transient
    raw node list that only exists on input.
  - NodePatch: A partial node merged by updates.
  - TreeDiff: The changes between two snapshots, for incremental clients.
  - Diagnostic: A skipped or repaired operation (missing reference, cycle,
    malformed node, ambiguous import shape).
*/
package domain
