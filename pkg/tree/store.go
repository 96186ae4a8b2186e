package tree

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
)

// Tree is the component tree of one document. Safe for concurrent readers; the
// engine assumes one logical writer.
type Tree struct {
	mu    sync.RWMutex
	nodes []domain.Node
	index map[string]int

	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithLifecycleHooks registers mutation and diagnostic callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tree) {
		t.hooks = hooks
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Tree) {
		t.now = now
	}
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		index:  make(map[string]int),
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

// Has reports whether a node with the given id exists.
func (t *Tree) Has(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.index[id]
	return ok
}

// Get returns a copy of the node with the given id.
func (t *Tree) Get(id string) (domain.Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[id]
	if !ok {
		return domain.Node{}, false
	}
	return t.nodes[i].Clone(), true
}

// List returns a copy of every node in store order.
func (t *Tree) List() []domain.Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return cloneAll(t.nodes)
}

// Children returns the direct children of id in store order.
func (t *Tree) Children(id string) []domain.Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []domain.Node
	for _, n := range t.nodes {
		if n.ParentID == id && id != "" {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Roots returns every parentless node in store order.
func (t *Tree) Roots() []domain.Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []domain.Node
	for _, n := range t.nodes {
		if n.IsRoot() {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Descendants returns the ids of every node below id, in store order.
func (t *Tree) Descendants(id string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.index[id]; !ok {
		return nil
	}
	set := subtreeSet(t.nodes, id)
	out := make([]string, 0, len(set)-1)
	for _, n := range t.nodes {
		if set[n.ID] && n.ID != id {
			out = append(out, n.ID)
		}
	}
	return out
}

// IsDescendant reports whether id sits below ancestor.
func (t *Tree) IsDescendant(id, ancestor string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return isDescendant(t.nodes, t.index, id, ancestor)
}

func cloneAll(nodes []domain.Node) []domain.Node {
	out := make([]domain.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func buildIndex(nodes []domain.Node) map[string]int {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}
	return index
}

// isDescendant walks up from id. The walk is bounded by the node count, so a
// corrupted parent chain cannot loop forever.
func isDescendant(nodes []domain.Node, index map[string]int, id, ancestor string) bool {
	i, ok := index[id]
	if !ok {
		return false
	}
	parent := nodes[i].ParentID
	for steps := 0; parent != "" && steps <= len(nodes); steps++ {
		if parent == ancestor {
			return true
		}
		j, ok := index[parent]
		if !ok {
			return false
		}
		parent = nodes[j].ParentID
	}
	return false
}

// rootOf returns the id of the root above id (id itself for roots).
func rootOf(nodes []domain.Node, index map[string]int, id string) (string, bool) {
	i, ok := index[id]
	if !ok {
		return "", false
	}
	cur := nodes[i]
	for steps := 0; cur.ParentID != "" && steps <= len(nodes); steps++ {
		j, ok := index[cur.ParentID]
		if !ok {
			return "", false
		}
		cur = nodes[j]
	}
	if cur.ParentID != "" {
		return "", false
	}
	return cur.ID, true
}

// subtreeSet is the transitive closure of id over parent links.
func subtreeSet(nodes []domain.Node, id string) map[string]bool {
	children := make(map[string][]string)
	for _, n := range nodes {
		if n.ParentID != "" {
			children[n.ParentID] = append(children[n.ParentID], n.ID)
		}
	}
	set := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if !set[c] {
				set[c] = true
				queue = append(queue, c)
			}
		}
	}
	return set
}
