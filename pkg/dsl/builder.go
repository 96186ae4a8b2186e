package dsl

import (
	"fmt"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/pkg/domain"
)

// Builder manages the tree construction.
type Builder struct {
	order []*NodeBuilder
	nodes map[string]*NodeBuilder
}

// New creates a new tree builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add declares a node with a "div" type by default.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id, Type: domain.TypeDiv},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, nb)
	return nb
}

// Nodes returns the declared nodes in declaration order.
func (b *Builder) Nodes() []domain.Node {
	out := make([]domain.Node, 0, len(b.order))
	for _, nb := range b.order {
		out = append(out, nb.Build())
	}
	return out
}

// Engine loads the declared nodes into a new engine. It fails when a parent
// is missing or the parent links form a cycle.
func (b *Builder) Engine(opts ...pagecraft.Option) (*pagecraft.Engine, error) {
	eng := pagecraft.New(opts...)
	if err := eng.LoadNodes(b.Nodes()); err != nil {
		return nil, fmt.Errorf("failed to build component tree: %w", err)
	}
	return eng, nil
}
