/*
Package espalier is a renderer-agnostic runtime for trees of stateful UI
components. It implements a dual-state propagation protocol: shared
application state flows down the tree, per-node local state stays private,
and changes propagate back up through declarative reactions and
upward-bubbling actions, without global mutable state or ad-hoc callback
wiring between components.

# Concept

A component is a Definition: a message handler plus optional derived-locals,
initial-state, render and lifecycle functions. Mounting a definition creates
a Node. A node either owns application state (the root, or an "embedded"
child wired to its parent through a Reaction) or is a pass-through view of
the nearest owning ancestor's state.

An external stimulus sends a Message to a node. The dispatcher resolves the
handler's tagged-option result into an Effect, commits local then application
state, fires the node's reaction (which re-enters the dispatcher with a
synthesized message for the target, typically the parent), and finally routes
any emitted Actions up the ancestor chain through each ancestor's reducer.
Everything happens synchronously inside one Send call.

# Usage

	eng := espalier.New()

	counter := ports.Definition{
		Name: "counter",
		Handler: func(msg domain.Message, appState, localState any, locals, args []any) (domain.HandlerResult, error) {
			if _, ok := msg.(Increment); ok {
				return domain.HandlerResult{domain.AppState(appState.(int) + 1)}, nil
			}
			return nil, nil
		},
	}

	root, err := eng.Mount(counter, ports.MountConfig{AppState: 0})
	if err != nil {
		log.Fatal(err)
	}
	if _, err := eng.Send(root, Increment{}); err != nil {
		log.Fatal(err)
	}

# Key Properties

  - Deterministic: one Send call runs handler, effect resolution, commits,
    reactions and action routing to completion before returning.
  - Renderer-agnostic: the runtime never renders; external renderers consult
    ShouldUpdate before recomputing a subtree.
  - Embeddable: adapters expose mounted trees over HTTP, MCP, or a terminal
    Runner, and persist snapshots to memory, file or Redis stores.
*/
package espalier
