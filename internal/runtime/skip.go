package runtime

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// ShouldUpdate asks whether the subtree rooted at id must be recomputed for
// the proposed instantiation. It applies the component's override when one
// is defined, otherwise the default policy in domain.ShouldUpdate.
//
// External renderers consult this before re-invoking a node's render step;
// the tree itself never renders.
func (t *Tree) ShouldUpdate(id domain.NodeID, proposed domain.UpdateCandidate) (bool, error) {
	n, ok := t.nodes[id]
	if !ok {
		return false, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}

	current := domain.UpdateCandidate{
		AppState:   t.visibleAppState(n, nil),
		LocalState: n.localState,
		Args:       n.args,
		Reaction:   n.reaction,
	}

	if n.def.ShouldUpdate != nil {
		return n.def.ShouldUpdate(current, proposed), nil
	}
	return domain.ShouldUpdate(current, proposed), nil
}
