package runtime

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Node is the runtime record for one instantiated component. Exactly one of
// two shapes holds for application state: the node owns its own value (roots
// and embedded nodes), or it is a pass-through view of the nearest owning
// ancestor's value.
type node struct {
	id  domain.NodeID
	def ports.Definition

	// parent is a non-owning back reference: an ID resolved through the
	// tree's node map, used only for action routing and parent-targeted
	// reaction delivery.
	parent domain.NodeID

	owner      bool
	appState   any // set only when owner
	localState any
	locals     []any
	args       []any

	reaction *domain.Reaction
	reducer  domain.ActionReducer
}

// Tree is a mounted component hierarchy with single-threaded synchronous
// dispatch. It is not safe for concurrent use; callers that share a tree
// across goroutines serialize access externally (see pkg/session).
type Tree struct {
	nodes  map[domain.NodeID]*node
	order  []domain.NodeID // mount order, root first
	root   domain.NodeID
	seq    int
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the tree's logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tree) {
		t.hooks = hooks
	}
}

// NewTree creates an empty tree.
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		nodes:  make(map[domain.NodeID]*node),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Root returns the root node's ID, or empty if nothing is mounted.
func (t *Tree) Root() domain.NodeID { return t.root }

// Len returns the number of mounted nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// ComponentOf returns the component name of a mounted node.
func (t *Tree) ComponentOf(id domain.NodeID) (string, error) {
	n, ok := t.nodes[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}
	return n.def.Name, nil
}

// Mount instantiates a component into the tree and returns the new node's ID.
//
// Ownership rules: a node owns its application state when it is the root,
// carries a reaction, or is explicitly marked embedded. Any other child is a
// pass-through view of the nearest owning ancestor's state; its AppState in
// cfg is ignored.
//
// Mount-class lifecycle hooks run in order: PreMount, initial-state,
// PostMount. HandlerResult-shaped returns from the hooks are resolved and
// applied exactly like a message handler's effect, which means a PostMount
// app-state change on an embedded node already fires its reaction.
func (t *Tree) Mount(def ports.Definition, cfg ports.MountConfig) (domain.NodeID, error) {
	if def.Name == "" {
		return "", fmt.Errorf("component definition has no name")
	}

	isRoot := cfg.Parent == ""
	if isRoot && t.root != "" {
		return "", fmt.Errorf("tree already has a root (%q)", t.root)
	}
	if !isRoot {
		if _, ok := t.nodes[cfg.Parent]; !ok {
			return "", fmt.Errorf("mount parent: %w: %q", domain.ErrNodeNotFound, cfg.Parent)
		}
	}

	id := cfg.ID
	if id == "" {
		t.seq++
		id = domain.NodeID(fmt.Sprintf("%s-%d", def.Name, t.seq))
	}
	if _, ok := t.nodes[id]; ok {
		return "", fmt.Errorf("node %q already mounted", id)
	}

	n := &node{
		id:       id,
		def:      def,
		parent:   cfg.Parent,
		owner:    isRoot || cfg.Embedded || cfg.Reaction != nil,
		args:     cfg.Args,
		reaction: cfg.Reaction,
		reducer:  cfg.Reducer,
	}
	if n.owner {
		n.appState = cfg.AppState
	}

	t.nodes[id] = n
	t.order = append(t.order, id)
	if isRoot {
		t.root = id
	}

	if err := t.initialize(n); err != nil {
		t.evict(id)
		return "", err
	}

	t.logger.Debug("node mounted", "node", id, "component", def.Name, "owner", n.owner)
	if t.hooks.OnMount != nil {
		t.hooks.OnMount(&domain.MountEvent{
			Timestamp: time.Now(),
			Node:      id,
			Component: def.Name,
			Parent:    cfg.Parent,
		})
	}
	return id, nil
}

// initialize runs the mount sequence: locals, PreMount, initial-state,
// PostMount. Hook effects run through the regular dispatch commit path with a
// fresh dispatch context each.
func (t *Tree) initialize(n *node) error {
	locals, err := t.computeLocals(n, t.visibleAppState(n, nil))
	if err != nil {
		return err
	}
	n.locals = locals

	if err := t.runMountHook(n, "pre-mount", n.def.Lifecycle.PreMount); err != nil {
		return err
	}

	if n.def.InitialState != nil {
		local, err := n.def.InitialState(t.visibleAppState(n, nil), n.locals, n.args)
		if err != nil {
			return &domain.DerivationError{Node: n.id, Stage: "initial-state", Err: err}
		}
		n.localState = local
	}

	return t.runMountHook(n, "post-mount", n.def.Lifecycle.PostMount)
}

func (t *Tree) runMountHook(n *node, stage string, hook ports.MountHook) error {
	if hook == nil {
		return nil
	}
	hr, err := hook(t.visibleAppState(n, nil), n.localState, n.locals, n.args)
	if err != nil {
		return &domain.DerivationError{Node: n.id, Stage: stage, Err: err}
	}
	if len(hr) == 0 {
		return nil
	}
	dc := newDispatchContext()
	eff, err := t.resolveEffect(dc, n, hr)
	if err != nil {
		return err
	}
	return t.applyEffect(dc, n, eff)
}

// Unmount removes a node and its whole subtree. PreUnmount hooks run
// leaves-first before any node is detached.
func (t *Tree) Unmount(id domain.NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}

	for _, child := range t.childrenOf(id) {
		if err := t.Unmount(child); err != nil {
			return err
		}
	}

	if hook := n.def.Lifecycle.PreUnmount; hook != nil {
		hook(t.visibleAppState(n, nil), n.localState, n.locals, n.args)
	}

	t.evict(id)
	t.logger.Debug("node unmounted", "node", id, "component", n.def.Name)
	if t.hooks.OnUnmount != nil {
		t.hooks.OnUnmount(&domain.MountEvent{
			Timestamp: time.Now(),
			Node:      id,
			Component: n.def.Name,
			Parent:    n.parent,
		})
	}
	return nil
}

func (t *Tree) evict(id domain.NodeID) {
	delete(t.nodes, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	if t.root == id {
		t.root = ""
	}
}

func (t *Tree) childrenOf(id domain.NodeID) []domain.NodeID {
	var out []domain.NodeID
	for _, oid := range t.order {
		if t.nodes[oid].parent == id {
			out = append(out, oid)
		}
	}
	return out
}

// ownerOf resolves the node whose application state n observes: n itself
// when it owns state, otherwise the nearest owning ancestor.
func (t *Tree) ownerOf(n *node) *node {
	cur := n
	for !cur.owner {
		parent, ok := t.nodes[cur.parent]
		if !ok {
			// A parentless non-owner cannot exist: roots always own.
			return cur
		}
		cur = parent
	}
	return cur
}

// viewersOf returns every mounted node observing owner's application state,
// in mount order. The owner itself is always first: it precedes its
// descendants in mount order and a pass-through chain cannot cross another
// owner.
func (t *Tree) viewersOf(owner *node) []*node {
	var out []*node
	for _, id := range t.order {
		n := t.nodes[id]
		if t.ownerOf(n) == owner {
			out = append(out, n)
		}
	}
	return out
}

// visibleAppState returns the application state n currently observes,
// preferring values committed earlier in the same dispatch chain.
func (t *Tree) visibleAppState(n *node, dc *dispatchContext) any {
	owner := t.ownerOf(n)
	if dc != nil {
		if v, ok := dc.app[owner.id]; ok {
			return v
		}
	}
	return owner.appState
}

// visibleLocalState returns n's local state, preferring values committed
// earlier in the same dispatch chain.
func (t *Tree) visibleLocalState(n *node, dc *dispatchContext) any {
	if dc != nil {
		if v, ok := dc.local[n.id]; ok {
			return v
		}
	}
	return n.localState
}

// Snapshot builds a serializable view of the tree in mount order.
func (t *Tree) Snapshot(sessionID string) *domain.TreeSnapshot {
	snap := &domain.TreeSnapshot{
		SessionID: sessionID,
		Root:      t.root,
		Nodes:     make([]domain.NodeSnapshot, 0, len(t.order)),
	}
	for _, id := range t.order {
		n := t.nodes[id]
		ns := domain.NodeSnapshot{
			ID:         n.id,
			Component:  n.def.Name,
			Parent:     n.parent,
			OwnsState:  n.owner,
			LocalState: n.localState,
			Locals:     n.locals,
			Args:       n.args,
			Reacts:     n.reaction != nil,
			Reduces:    n.reducer != nil,
		}
		if n.owner {
			ns.AppState = n.appState
		}
		snap.Nodes = append(snap.Nodes, ns)
	}
	return snap
}

// Render invokes the node's render function with its current state.
func (t *Tree) Render(id domain.NodeID) (string, error) {
	n, ok := t.nodes[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}
	if n.def.Render == nil {
		return "", nil
	}
	out, err := n.def.Render(t.visibleAppState(n, nil), n.localState, n.locals, n.args)
	if err != nil {
		return "", &domain.DerivationError{Node: id, Stage: "render", Err: err}
	}
	return out, nil
}
