package runtime

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// fire delivers a reaction: it resolves the target, builds the message via
// the reaction's transform, and re-enters the dispatcher with a nested send.
// A nil reaction is a no-op. Parent targets resolve dynamically against the
// firing node's parent link at fire time.
func (t *Tree) fire(dc *dispatchContext, n *node, r *domain.Reaction, value any, extra ...any) error {
	if r == nil {
		return nil
	}

	var target domain.NodeID
	switch tg := r.Target.(type) {
	case nil, domain.ParentTarget:
		if n.parent == "" {
			return fmt.Errorf("%w: node %q has no parent", domain.ErrUnresolvedReactionTarget, n.id)
		}
		target = n.parent
	case domain.NodeTarget:
		if _, ok := t.nodes[tg.Node]; !ok {
			return fmt.Errorf("%w: node %q is not mounted", domain.ErrUnresolvedReactionTarget, tg.Node)
		}
		target = tg.Node
	}

	msg := domain.Message(value)
	if r.Transform != nil {
		msg = r.Transform(value, extra...)
	}

	t.logger.Debug("reaction fired", "from", n.id, "to", target)
	_, err := t.send(dc, target, msg)
	return err
}
