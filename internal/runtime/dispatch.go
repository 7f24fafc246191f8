package runtime

import (
	"fmt"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
)

// dispatchContext is the scoped state of one top-level dispatch chain. It
// carries the transient overlay: every state value committed during the chain
// is recorded here so re-entrant sends observe the freshest committed value,
// and it tracks re-entrancy depth for diagnostics. The context is dropped
// when the top-level Send returns; it is never ambient or global.
type dispatchContext struct {
	app   map[domain.NodeID]any
	local map[domain.NodeID]any
	depth int
}

func newDispatchContext() *dispatchContext {
	return &dispatchContext{
		app:   make(map[domain.NodeID]any),
		local: make(map[domain.NodeID]any),
	}
}

// Send synchronously dispatches a message to a node and returns the resolved
// effect for diagnostic purposes. The whole chain (handler, effect
// resolution, state commits, reaction cascade, action routing) completes
// within this call. Re-entrant sends triggered by reactions are strictly
// nested and stack-bounded by tree depth.
//
// Errors abort the chain but do not roll back state committed earlier in it.
func (t *Tree) Send(id domain.NodeID, msg domain.Message) (domain.Effect, error) {
	return t.send(newDispatchContext(), id, msg)
}

func (t *Tree) send(dc *dispatchContext, id domain.NodeID, msg domain.Message) (domain.Effect, error) {
	n, ok := t.nodes[id]
	if !ok {
		return domain.NoEffect(), fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}

	dc.depth++
	defer func() { dc.depth-- }()

	var eff domain.Effect
	switch m := msg.(type) {
	case domain.EmbedAppState:
		// Reserved message: bypass the user handler entirely.
		next := m.State
		if m.Embed != nil {
			next = m.Embed(t.visibleAppState(n, dc), m.State)
		}
		eff = domain.Effect{AppState: next, LocalState: domain.Keep}
	default:
		if n.def.Handler == nil {
			return domain.NoEffect(), fmt.Errorf("component %q has no message handler", n.def.Name)
		}
		hr, err := n.def.Handler(msg, t.visibleAppState(n, dc), t.visibleLocalState(n, dc), n.locals, n.args)
		if err != nil {
			return domain.NoEffect(), &domain.DerivationError{Node: id, Stage: "handler", Err: err}
		}
		eff, err = t.resolveEffect(dc, n, hr)
		if err != nil {
			return domain.NoEffect(), err
		}
	}

	if err := t.applyEffect(dc, n, eff); err != nil {
		return eff, err
	}

	if t.hooks.OnDispatch != nil {
		t.hooks.OnDispatch(&domain.DispatchEvent{
			Timestamp:        time.Now(),
			Node:             id,
			Component:        n.def.Name,
			Depth:            dc.depth,
			AppStateChanged:  !eff.KeepsAppState(),
			LocalStateChange: !eff.KeepsLocalState(),
			Actions:          len(eff.Actions),
		})
	}
	return eff, nil
}

// applyEffect commits an effect in protocol order: local state, then
// application state (with any reaction cascade), then action routing. Actions
// observe post-commit state.
func (t *Tree) applyEffect(dc *dispatchContext, n *node, eff domain.Effect) error {
	if !eff.KeepsLocalState() {
		n.localState = eff.LocalState
		dc.local[n.id] = eff.LocalState
	}

	if !eff.KeepsAppState() {
		if err := t.commitAppState(dc, n, eff.AppState); err != nil {
			return err
		}
	}

	for _, action := range eff.Actions {
		if err := t.route(dc, n, action); err != nil {
			return err
		}
	}
	return nil
}

// commitAppState writes a new application state to the node's owner,
// recomputes locals for every node observing that state, and fires the
// owner's reaction if it has one. A pass-through node's app-state change
// lands on the owning ancestor whose state it views; that is the only place
// the value physically lives, but the replacement is visible to the whole
// viewing set, so their locals and update hooks run too.
//
// PreUpdate hooks see the outgoing state and locals; PostUpdate hooks see
// the committed state and recomputed locals, before the reaction cascade
// re-enters dispatch.
func (t *Tree) commitAppState(dc *dispatchContext, n *node, next any) error {
	owner := t.ownerOf(n)
	prev := owner.appState
	viewers := t.viewersOf(owner)

	for _, v := range viewers {
		if hook := v.def.Lifecycle.PreUpdate; hook != nil {
			hook(prev, t.visibleLocalState(v, dc), v.locals, v.args)
		}
	}

	owner.appState = next
	dc.app[owner.id] = next

	for _, v := range viewers {
		locals, err := t.computeLocals(v, next)
		if err != nil {
			return err
		}
		v.locals = locals
	}

	for _, v := range viewers {
		if hook := v.def.Lifecycle.PostUpdate; hook != nil {
			hook(next, t.visibleLocalState(v, dc), v.locals, v.args)
		}
	}

	reacted := owner.reaction != nil
	t.logger.Debug("app state committed", "node", owner.id, "component", owner.def.Name, "reacts", reacted)
	if t.hooks.OnCommit != nil {
		t.hooks.OnCommit(&domain.CommitEvent{
			Timestamp: time.Now(),
			Node:      owner.id,
			Component: owner.def.Name,
			Reacted:   reacted,
		})
	}

	if reacted {
		return t.fire(dc, owner, owner.reaction, next)
	}
	return nil
}
