package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Builder manages the tree construction.
type Builder struct {
	root *NodeBuilder
}

// New creates a new tree builder.
func New() *Builder {
	return &Builder{}
}

// Root declares the tree's root component. Calling it twice replaces the
// previous plan.
func (b *Builder) Root(def ports.Definition) *NodeBuilder {
	b.root = &NodeBuilder{def: def}
	return b.root
}

// Apply mounts the planned tree on the engine, parents before children, and
// returns the assigned node IDs keyed by the IDs fixed via NodeBuilder.ID.
// Auto-assigned nodes appear under their assigned ID.
func (b *Builder) Apply(eng *espalier.Engine) (map[string]domain.NodeID, error) {
	if b.root == nil {
		return nil, errors.New("no root declared")
	}

	ids := make(map[string]domain.NodeID)
	if err := b.apply(eng, b.root, ""); err != nil {
		return nil, err
	}
	b.collect(b.root, ids)
	return ids, nil
}

func (b *Builder) apply(eng *espalier.Engine, nb *NodeBuilder, parent domain.NodeID) error {
	cfg := nb.cfg
	cfg.Parent = parent

	id, err := eng.Mount(nb.def, cfg)
	if err != nil {
		return fmt.Errorf("failed to mount %q: %w", nb.def.Name, err)
	}
	nb.assigned = id

	for _, child := range nb.children {
		if err := b.apply(eng, child, id); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) collect(nb *NodeBuilder, ids map[string]domain.NodeID) {
	ids[string(nb.assigned)] = nb.assigned
	for _, child := range nb.children {
		b.collect(child, ids)
	}
}
