package dsl

import "github.com/aretw0/pagecraft/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Type sets the element type.
func (n *NodeBuilder) Type(nodeType string) *NodeBuilder {
	n.node.Type = nodeType
	return n
}

// Text sets the text content of the node.
func (n *NodeBuilder) Text(content string) *NodeBuilder {
	return n.Prop(domain.PropChildren, content)
}

// Class sets the className prop.
func (n *NodeBuilder) Class(className string) *NodeBuilder {
	return n.Prop(domain.PropClassName, className)
}

// Prop sets a scalar prop. Maps become style-like values, see domain.ValueOf.
func (n *NodeBuilder) Prop(key string, value any) *NodeBuilder {
	if n.node.Props == nil {
		n.node.Props = make(domain.Props)
	}
	n.node.Props[key] = domain.ValueOf(value)
	return n
}

// Style sets one CSS property, keeping the others.
func (n *NodeBuilder) Style(property, value string) *NodeBuilder {
	style := n.node.Props.Style()
	style[property] = value
	if n.node.Props == nil {
		n.node.Props = make(domain.Props)
	}
	n.node.Props[domain.PropStyle] = domain.StyleValue(style)
	return n
}

// Under places the node as the last child of parentID.
func (n *NodeBuilder) Under(parentID string) *NodeBuilder {
	n.node.ParentID = parentID
	return n
}

// Page tags a root node with the page it belongs to.
func (n *NodeBuilder) Page(pageID string) *NodeBuilder {
	return n.Prop(domain.PropPageID, pageID)
}

// Build returns a copy of the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}
