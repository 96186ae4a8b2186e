package tree_test

import (
	"testing"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id, typ, parent string) domain.Node {
	return domain.Node{ID: id, Type: typ, ParentID: parent}
}

func ids(nodes []domain.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

// recorder collects hook calls.
type recorder struct {
	events []domain.MutationEvent
	diags  []domain.Diagnostic
}

func (r *recorder) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation:   func(e *domain.MutationEvent) { r.events = append(r.events, *e) },
		OnDiagnostic: func(d *domain.Diagnostic) { r.diags = append(r.diags, *d) },
	}
}

func newTree(t *testing.T, nodes ...domain.Node) (*tree.Tree, *recorder) {
	t.Helper()
	rec := &recorder{}
	tr := tree.New(tree.WithLifecycleHooks(rec.hooks()))
	require.NoError(t, tr.Replace(nodes))
	rec.events = nil
	return tr, rec
}

func TestTree_Reads(t *testing.T) {
	tr, _ := newTree(t,
		node("a", "div", ""),
		node("b", "p", "a"),
		node("c", "div", ""),
		node("d", "span", "a"),
		node("e", "span", "d"),
	)

	assert.Equal(t, 5, tr.Len())
	assert.True(t, tr.Has("d"))
	assert.False(t, tr.Has("zz"))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(tr.List()))
	assert.Equal(t, []string{"b", "d"}, ids(tr.Children("a")))
	assert.Empty(t, tr.Children(""))
	assert.Equal(t, []string{"a", "c"}, ids(tr.Roots()))
	assert.Equal(t, []string{"b", "d", "e"}, tr.Descendants("a"))
	assert.Nil(t, tr.Descendants("zz"))
	assert.True(t, tr.IsDescendant("e", "a"))
	assert.False(t, tr.IsDescendant("a", "e"))
	assert.False(t, tr.IsDescendant("a", "a"))

	got, ok := tr.Get("b")
	require.True(t, ok)
	assert.Equal(t, "a", got.ParentID)
}

func TestTree_SnapshotsAreCopies(t *testing.T) {
	tr, _ := newTree(t, domain.Node{ID: "a", Type: "div", Props: domain.Props{
		"style": domain.StyleValue(domain.Style{"color": "blue"}),
	}})

	list := tr.List()
	list[0].Props["style"] = domain.String("hacked")
	list[0].ID = "x"

	got, _ := tr.Get("a")
	assert.Equal(t, domain.Style{"color": "blue"}, got.Props.Style())
}

func TestTree_Add(t *testing.T) {
	tr, rec := newTree(t, node("a", "div", ""))

	require.NoError(t, tr.Add(node("b", "p", "ignored"), "a"))
	got, _ := tr.Get("b")
	assert.Equal(t, "a", got.ParentID, "the parent argument wins")
	assert.Equal(t, []string{"a", "b"}, ids(tr.List()))
	require.Len(t, rec.events, 1)
	assert.Equal(t, domain.EventNodeAdded, rec.events[0].Type)
	assert.Equal(t, 2, rec.events[0].Size)

	t.Run("Duplicate", func(t *testing.T) {
		err := tr.Add(node("a", "div", ""), "")
		assert.ErrorIs(t, err, domain.ErrDuplicateID)
		assert.Equal(t, 2, tr.Len())
	})
	t.Run("Missing Parent", func(t *testing.T) {
		err := tr.Add(node("c", "div", ""), "nope")
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
		assert.False(t, tr.Has("c"))
	})
	t.Run("Invalid", func(t *testing.T) {
		assert.ErrorIs(t, tr.Add(node("", "div", ""), ""), domain.ErrInvalidNode)
		assert.ErrorIs(t, tr.Add(node("x", "", ""), ""), domain.ErrInvalidNode)
	})
	t.Run("Strips Transient Props", func(t *testing.T) {
		n := domain.Node{ID: "t", Type: "div", Props: domain.Props{
			"children": domain.Nodes([]any{map[string]any{"type": "p"}}),
			"gone":     domain.Null(),
			"title":    domain.String("kept"),
		}}
		require.NoError(t, tr.Add(n, ""))
		got, _ := tr.Get("t")
		assert.Equal(t, []string{"title"}, got.Props.Keys())
	})
}

func TestTree_Append(t *testing.T) {
	tr, rec := newTree(t, node("a", "div", ""))

	t.Run("Atomic Failure", func(t *testing.T) {
		err := tr.Append([]domain.Node{
			node("b", "div", "a"),
			node("c", "div", "missing"),
		})
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
		assert.Equal(t, 1, tr.Len(), "no partial batch")
		assert.Empty(t, rec.events)
	})

	t.Run("Cycle Inside Batch", func(t *testing.T) {
		err := tr.Append([]domain.Node{
			node("x", "div", "y"),
			node("y", "div", "x"),
		})
		assert.ErrorIs(t, err, domain.ErrCycle)
		assert.Equal(t, 1, tr.Len())
	})

	t.Run("Forward Reference", func(t *testing.T) {
		err := tr.Append([]domain.Node{
			node("child", "p", "parent"),
			node("parent", "div", "a"),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "child", "parent"}, ids(tr.List()))
		require.Len(t, rec.events, 1)
		assert.Equal(t, domain.EventBatchApplied, rec.events[0].Type)
		assert.Equal(t, []string{"child", "parent"}, rec.events[0].IDs)
	})
}

func TestTree_Update(t *testing.T) {
	t.Run("Style Merge", func(t *testing.T) {
		tr, _ := newTree(t, domain.Node{ID: "n", Type: "div", Props: domain.Props{
			"style": domain.StyleValue(domain.Style{"color": "blue", "fontSize": "12px"}),
		}})

		ok := tr.Update("n", domain.NodePatch{Props: domain.Props{
			"style": domain.StyleValue(domain.Style{"color": "red"}),
		}})

		require.True(t, ok)
		got, _ := tr.Get("n")
		assert.Equal(t, domain.Style{"color": "red", "fontSize": "12px"}, got.Props.Style())
	})

	t.Run("Null Deletes And Type Overwrites", func(t *testing.T) {
		tr, rec := newTree(t, domain.Node{ID: "n", Type: "div", Props: domain.Props{
			"className": domain.String("hero"),
			"children":  domain.String("hi"),
		}})

		ok := tr.Update("n", domain.NodePatch{Type: "section", Props: domain.Props{
			"className": domain.Null(),
			"children":  domain.String("hello"),
			"hidden":    domain.Bool(true),
		}})

		require.True(t, ok)
		got, _ := tr.Get("n")
		assert.Equal(t, "section", got.Type)
		assert.Equal(t, []string{"children", "hidden"}, got.Props.Keys())
		assert.Equal(t, "hello", got.Props.Text("children"))
		require.Len(t, rec.events, 1)
		assert.Equal(t, domain.EventNodeUpdated, rec.events[0].Type)
	})

	t.Run("Empty Style Value Removes Key", func(t *testing.T) {
		tr, _ := newTree(t, domain.Node{ID: "n", Type: "div", Props: domain.Props{
			"style": domain.StyleValue(domain.Style{"color": "blue", "margin": "0"}),
		}})
		tr.Update("n", domain.NodePatch{Props: domain.Props{
			"style": domain.StyleValue(domain.Style{"margin": ""}),
		}})
		got, _ := tr.Get("n")
		assert.Equal(t, domain.Style{"color": "blue"}, got.Props.Style())
	})

	t.Run("Missing Id", func(t *testing.T) {
		tr, rec := newTree(t, node("n", "div", ""))
		ok := tr.Update("ghost", domain.NodePatch{Type: "p"})
		assert.False(t, ok)
		assert.Empty(t, rec.events)
		require.Len(t, rec.diags, 1)
		assert.Equal(t, domain.DiagReferenceNotFound, rec.diags[0].Kind)
		assert.Equal(t, "ghost", rec.diags[0].NodeID)
	})

	t.Run("Old Snapshot Untouched", func(t *testing.T) {
		tr, _ := newTree(t, domain.Node{ID: "n", Type: "div", Props: domain.Props{
			"style": domain.StyleValue(domain.Style{"color": "blue"}),
		}})
		before := tr.List()
		tr.Update("n", domain.NodePatch{Props: domain.Props{
			"style": domain.StyleValue(domain.Style{"color": "red"}),
		}})
		assert.Equal(t, domain.Style{"color": "blue"}, before[0].Props.Style())
	})
}

func TestTree_Delete(t *testing.T) {
	t.Run("Chain", func(t *testing.T) {
		tr, rec := newTree(t,
			node("A", "div", ""),
			node("B", "div", "A"),
			node("C", "div", "B"),
			node("D", "div", ""),
		)

		removed := tr.Delete("A")

		assert.Equal(t, []string{"A", "B", "C"}, removed)
		assert.Equal(t, []string{"D"}, ids(tr.List()))
		require.Len(t, rec.events, 1, "one atomic replacement")
		assert.Equal(t, domain.EventNodesRemoved, rec.events[0].Type)
		assert.Equal(t, 1, rec.events[0].Size)
	})

	t.Run("Precision", func(t *testing.T) {
		tr, _ := newTree(t,
			node("r", "div", ""),
			node("x", "div", "r"),
			node("x1", "div", "x"),
			node("y", "div", "r"),
			node("x2", "div", "x"),
			node("x11", "div", "x1"),
			node("y1", "div", "y"),
		)

		removed := tr.Delete("x")

		assert.Equal(t, []string{"x", "x1", "x2", "x11"}, removed)
		assert.Equal(t, []string{"r", "y", "y1"}, ids(tr.List()))
	})

	t.Run("Missing", func(t *testing.T) {
		tr, rec := newTree(t, node("a", "div", ""))
		assert.Nil(t, tr.Delete("zz"))
		assert.Equal(t, 1, tr.Len())
		require.Len(t, rec.diags, 1)
		assert.Equal(t, domain.DiagReferenceNotFound, rec.diags[0].Kind)
	})
}

func TestTree_ReorderInside(t *testing.T) {
	tr, rec := newTree(t,
		node("a", "div", ""),
		node("b", "div", "a"),
		node("c", "div", "b"),
		node("d", "div", ""),
	)

	t.Run("Self", func(t *testing.T) {
		assert.False(t, tr.Reorder("a", "a", domain.PositionInside))
	})
	t.Run("Descendant", func(t *testing.T) {
		assert.False(t, tr.Reorder("a", "c", domain.PositionInside))
		got, _ := tr.Get("a")
		assert.True(t, got.IsRoot())
	})
	require.Len(t, rec.diags, 2)
	assert.Equal(t, domain.DiagCycleViolation, rec.diags[0].Kind)
	assert.Equal(t, domain.DiagCycleViolation, rec.diags[1].Kind)

	t.Run("Reparent", func(t *testing.T) {
		require.True(t, tr.Reorder("d", "c", domain.PositionInside))
		got, _ := tr.Get("d")
		assert.Equal(t, "c", got.ParentID)
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(tr.List()), "inside keeps list position")
	})
}

func TestTree_ReorderSiblings(t *testing.T) {
	build := func(t *testing.T) *tree.Tree {
		tr, _ := newTree(t,
			node("p", "div", ""),
			node("x", "div", "p"),
			node("y", "div", "p"),
			node("z", "div", "p"),
			node("q", "div", ""),
			node("w", "div", "q"),
		)
		return tr
	}

	t.Run("After Is Idempotent", func(t *testing.T) {
		tr := build(t)
		require.True(t, tr.Reorder("x", "z", domain.PositionAfter))
		assert.Equal(t, []string{"y", "z", "x"}, ids(tr.Children("p")))
		first := tr.List()

		require.True(t, tr.Reorder("x", "z", domain.PositionAfter))
		assert.Equal(t, first, tr.List())
	})

	t.Run("Before", func(t *testing.T) {
		tr := build(t)
		require.True(t, tr.Reorder("z", "x", domain.PositionBefore))
		assert.Equal(t, []string{"z", "x", "y"}, ids(tr.Children("p")))
	})

	t.Run("Across Parents", func(t *testing.T) {
		tr := build(t)
		require.True(t, tr.Reorder("w", "y", domain.PositionBefore))
		got, _ := tr.Get("w")
		assert.Equal(t, "p", got.ParentID)
		assert.Equal(t, []string{"x", "w", "y", "z"}, ids(tr.Children("p")))
		assert.Empty(t, tr.Children("q"))
	})

	t.Run("To Root Level", func(t *testing.T) {
		tr := build(t)
		require.True(t, tr.Reorder("y", "q", domain.PositionAfter))
		got, _ := tr.Get("y")
		assert.True(t, got.IsRoot())
		assert.Equal(t, []string{"p", "q", "y"}, ids(tr.Roots()))
	})

	t.Run("Sibling Of Own Descendant", func(t *testing.T) {
		tr := build(t)
		assert.False(t, tr.Reorder("p", "y", domain.PositionAfter))
		got, _ := tr.Get("p")
		assert.True(t, got.IsRoot())
	})

	t.Run("Target Is Dragged", func(t *testing.T) {
		rec := &recorder{}
		tr := tree.New(tree.WithLifecycleHooks(rec.hooks()))
		require.NoError(t, tr.Replace([]domain.Node{node("a", "div", ""), node("b", "div", "")}))
		before := tr.List()

		assert.False(t, tr.Reorder("a", "a", domain.PositionAfter))
		assert.Equal(t, before, tr.List())
		require.Len(t, rec.diags, 1)
		assert.Equal(t, domain.DiagTargetLost, rec.diags[0].Kind)
	})

	t.Run("Missing Reference", func(t *testing.T) {
		tr := build(t)
		assert.False(t, tr.Reorder("x", "ghost", domain.PositionAfter))
		assert.False(t, tr.Reorder("ghost", "x", domain.PositionAfter))
		assert.False(t, tr.Reorder("x", "y", domain.Position("sideways")))
	})
}

func TestTree_Replace(t *testing.T) {
	tr, rec := newTree(t, node("a", "div", ""))

	err := tr.Replace([]domain.Node{node("a", "div", "b"), node("b", "div", "a")})
	assert.ErrorIs(t, err, domain.ErrCycle)
	assert.Equal(t, []string{"a"}, ids(tr.List()))

	require.NoError(t, tr.Replace(nil))
	assert.Zero(t, tr.Len())
	require.Len(t, rec.events, 1)
	assert.Equal(t, domain.EventTreeReplaced, rec.events[0].Type)
}

func TestTree_HooksMayReadTree(t *testing.T) {
	var tr *tree.Tree
	var seen int
	tr = tree.New(tree.WithLifecycleHooks(domain.LifecycleHooks{
		OnMutation: func(e *domain.MutationEvent) { seen = tr.Len() },
	}))

	require.NoError(t, tr.Add(node("a", "div", ""), ""))
	assert.Equal(t, 1, seen)
}
