package runtime

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// resolveEffect folds a handler's tagged option sequence into an Effect.
//
// State tags are order-independent with last-write-wins per slot. Actions
// accumulate in emission order, duplicates allowed. Each emitted action is
// first run through the emitting node's own reducer (self-reduction): the
// reducer may convert the action into an app-state change on this node
// instead of letting it bubble, or replace it with zero or one new actions.
// A self-reduced app-state change resolves after the tag writes, so it takes
// precedence over the handler's own app-state tag.
func (t *Tree) resolveEffect(dc *dispatchContext, n *node, hr domain.HandlerResult) (domain.Effect, error) {
	eff := domain.NoEffect()

	var raw []domain.Action
	for _, opt := range hr {
		switch opt.Tag {
		case domain.TagAppState:
			eff.AppState = opt.Value
		case domain.TagLocalState:
			eff.LocalState = opt.Value
		case domain.TagAction:
			raw = append(raw, opt.Value)
		default:
			return domain.NoEffect(), fmt.Errorf("%w: %q", domain.ErrInvalidEffectTag, opt.Tag)
		}
	}

	if n.reducer == nil {
		eff.Actions = raw
		return eff, nil
	}

	for _, action := range raw {
		r := n.reducer(t.visibleAppState(n, dc), action)
		if r.AppState != domain.Keep {
			eff.AppState = r.AppState
		}
		if r.Action != nil {
			eff.Actions = append(eff.Actions, r.Action)
		}
	}
	return eff, nil
}
