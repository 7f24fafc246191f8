package runtime

import (
	"time"

	"github.com/aretw0/espalier/pkg/domain"
)

// route walks an action from its origin toward the root, one ancestor at a
// time. Each ancestor's reducer may commit an app-state change (cascading a
// reaction exactly like a dispatcher commit), replace the action, or absorb
// it. A nil reducer is identity pass-through. An action reaching the root
// unconsumed is dropped silently: the root's implicit reducer has no
// listener, and applications that want to observe stray actions supply a
// root-level reducer.
func (t *Tree) route(dc *dispatchContext, origin *node, action domain.Action) error {
	cur := origin
	act := action

	for cur.parent != "" {
		anc, ok := t.nodes[cur.parent]
		if !ok {
			break
		}

		if anc.reducer == nil {
			cur = anc
			continue
		}

		r := anc.reducer(t.visibleAppState(anc, dc), act)

		if r.AppState != domain.Keep {
			if err := t.commitAppState(dc, anc, r.AppState); err != nil {
				return err
			}
		}

		consumed := r.Action == nil
		if t.hooks.OnAction != nil {
			t.hooks.OnAction(&domain.ActionEvent{
				Timestamp:   time.Now(),
				Origin:      origin.id,
				Node:        anc.id,
				Transformed: !consumed && !domain.Equal(r.Action, act),
				Consumed:    consumed,
			})
		}
		if consumed {
			return nil
		}

		act = r.Action
		cur = anc
	}

	t.logger.Debug("action dropped at root", "origin", origin.id)
	if t.hooks.OnAction != nil {
		t.hooks.OnAction(&domain.ActionEvent{
			Timestamp: time.Now(),
			Origin:    origin.id,
			Node:      t.root,
			Dropped:   true,
		})
	}
	return nil
}
