/*
Package pagecraft is the component tree engine of a visual page builder.

A page is a flat list of element descriptors (nodes) linked by parent ids. The
engine edits that list with structural operations (add, update, cascading
delete, reorder, reparent), reads two historical document schemas and writes
one, absorbs bulk subtrees produced by assistants or image analysis, and renders
the tree to deterministic HTML.

# Concept

The tree is held in memory by an Engine. Everything outside the engine is a
collaborator: storage adapters hand it document bytes, editors call its
mutation methods, and previews read its HTML. Failures that only concern one
node (a stale id, a would-be cycle, a malformed entry in a saved document) are
absorbed and reported as diagnostics through LifecycleHooks rather than
aborting the whole operation.

# Usage

	eng := pagecraft.New(pagecraft.WithLogger(logger))
	if err := eng.Load(data); err != nil {
		log.Fatal(err)
	}

	ids, err := eng.ImportJSON(payload, "")
	if err != nil {
		log.Fatal(err)
	}
	eng.Reorder(ids[0], "footer", domain.PositionBefore)

	out, err := eng.Save()
	fmt.Println(eng.RenderHTML())

For sharing documents between HTTP or MCP clients, see pkg/session, which
loads, edits and saves documents through a ports.DocumentStore under a
per-document lock.
*/
package pagecraft
