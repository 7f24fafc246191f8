package runtime

import "github.com/aretw0/espalier/pkg/domain"

// computeLocals evaluates the node's derived bindings from the given
// application state and its args. Derivation failures propagate as
// DerivationError; there is no silent recovery from a broken derivation.
func (t *Tree) computeLocals(n *node, appState any) ([]any, error) {
	if n.def.Locals == nil {
		return nil, nil
	}
	locals, err := n.def.Locals(appState, n.args)
	if err != nil {
		return nil, &domain.DerivationError{Node: n.id, Stage: "locals", Err: err}
	}
	return locals, nil
}
