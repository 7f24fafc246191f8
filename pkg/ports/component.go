package ports

import "github.com/aretw0/espalier/pkg/domain"

// Handler processes one message addressed to a node and returns the tagged
// option sequence the effect resolver consumes. Any returned error aborts the
// current dispatch chain; state committed earlier in the chain stands.
type Handler func(msg domain.Message, appState, localState any, locals, args []any) (domain.HandlerResult, error)

// InitialStateFunc computes a node's local state exactly once, at mount.
type InitialStateFunc func(appState any, locals, args []any) (any, error)

// LocalsFunc computes the node's derived read-only bindings. It must be pure
// and deterministic: it runs once at instantiation and again every time the
// owning node's application state is replaced.
type LocalsFunc func(appState any, args []any) ([]any, error)

// RenderFunc produces the node's view output. The runtime never calls it;
// it is consumed by external renderers such as the Runner.
type RenderFunc func(appState, localState any, locals, args []any) (string, error)

// ShouldUpdateFunc overrides the default update-skip policy for a component.
type ShouldUpdateFunc func(current, proposed domain.UpdateCandidate) bool

// MountHook runs at a mount-class lifecycle point. Its HandlerResult, if any,
// is resolved and applied exactly like a message handler's.
type MountHook func(appState, localState any, locals, args []any) (domain.HandlerResult, error)

// UpdateHook runs at a non-mount lifecycle point. It observes, it does not
// produce effects.
type UpdateHook func(appState, localState any, locals, args []any)

// Lifecycle groups the optional per-component lifecycle hooks. PreUpdate
// and PostUpdate bracket every replacement of the node's observed
// application state, including replacements committed by the owning
// ancestor: PreUpdate sees the outgoing state and locals, PostUpdate the
// committed state and recomputed locals. PreUnmount runs before the node is
// detached.
type Lifecycle struct {
	PreMount   MountHook
	PostMount  MountHook
	PreUpdate  UpdateHook
	PostUpdate UpdateHook
	PreUnmount UpdateHook
}

// Definition describes a component type: how it handles messages, derives
// locals, seeds local state, renders, and participates in lifecycle.
// Definitions are immutable once registered.
type Definition struct {
	Name         string
	Handler      Handler
	InitialState InitialStateFunc
	Locals       LocalsFunc
	Render       RenderFunc
	ShouldUpdate ShouldUpdateFunc
	Lifecycle    Lifecycle
}

// MountConfig carries the per-instantiation wiring of a node: where it hangs
// in the tree, what state it starts with or views, and how its state changes
// and actions propagate.
type MountConfig struct {
	// ID optionally fixes the node's identifier. Empty means auto-assigned.
	ID domain.NodeID

	// Parent is the mounting parent; empty mounts a root.
	Parent domain.NodeID

	// AppState is the node's initial application state. It is only
	// meaningful for state owners: roots and embedded nodes. Non-owning
	// children view the nearest owning ancestor's state instead.
	AppState any

	// Embedded marks a child as owning its own application state even
	// without a reaction attached.
	Embedded bool

	// Args is the ordered instantiation argument sequence, immutable for
	// the node's lifetime.
	Args []any

	// Reaction, when set, propagates the node's application-state changes.
	// A node with a reaction owns its state.
	Reaction *domain.Reaction

	// Reducer is consulted when this node or its subtree emits an action.
	// Nil is identity pass-through.
	Reducer domain.ActionReducer
}
