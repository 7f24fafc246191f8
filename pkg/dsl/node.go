package dsl

import (
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// NodeBuilder provides a fluent API for configuring one planned node.
type NodeBuilder struct {
	def      ports.Definition
	cfg      ports.MountConfig
	children []*NodeBuilder
	assigned domain.NodeID
}

// ID fixes the node's identifier instead of letting the tree assign one.
func (n *NodeBuilder) ID(id string) *NodeBuilder {
	n.cfg.ID = domain.NodeID(id)
	return n
}

// AppState sets the node's initial application state. Only meaningful for
// state owners: the root, embedded nodes, and nodes with a reaction.
func (n *NodeBuilder) AppState(v any) *NodeBuilder {
	n.cfg.AppState = v
	return n
}

// Embedded marks the node as owning its own application state even without a
// reaction attached.
func (n *NodeBuilder) Embedded() *NodeBuilder {
	n.cfg.Embedded = true
	return n
}

// Args sets the node's immutable instantiation arguments.
func (n *NodeBuilder) Args(args ...any) *NodeBuilder {
	n.cfg.Args = args
	return n
}

// React attaches a reaction propagating the node's state changes. A node with
// a reaction owns its state.
func (n *NodeBuilder) React(r *domain.Reaction) *NodeBuilder {
	n.cfg.Reaction = r
	return n
}

// Reduce attaches an action reducer consulted for actions emitted in this
// node's subtree.
func (n *NodeBuilder) Reduce(r domain.ActionReducer) *NodeBuilder {
	n.cfg.Reducer = r
	return n
}

// Child declares a child node and returns its builder for further
// configuration.
func (n *NodeBuilder) Child(def ports.Definition) *NodeBuilder {
	child := &NodeBuilder{def: def}
	n.children = append(n.children, child)
	return child
}
