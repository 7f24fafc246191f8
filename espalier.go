package espalier

import (
	"log/slog"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/internal/runtime"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
)

// Version is the library version reported by the CLI and the MCP adapter.
var Version = "0.4.0"

// Engine is the high-level entry point for the Espalier library.
// It wraps the internal tree runtime and provides a simplified API for
// consumers: register component definitions, mount them, send them messages.
//
// An Engine holds exactly one tree and, like the tree, is not safe for
// concurrent use; wrap it in a session manager (pkg/session) when serving
// multiple clients.
type Engine struct {
	tree     *runtime.Tree
	registry *registry.Registry
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger injects a logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRegistry shares a pre-populated component registry, e.g. one that
// serving adapters also read from.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// New creates an Engine with an empty tree.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = registry.New()
	}
	e.tree = runtime.NewTree(
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
	)
	return e
}

// Register adds a component definition to the engine's registry.
func (e *Engine) Register(def ports.Definition) error {
	return e.registry.Register(def)
}

// Registry exposes the engine's component registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Mount instantiates a component definition into the tree.
func (e *Engine) Mount(def ports.Definition, cfg ports.MountConfig) (domain.NodeID, error) {
	return e.tree.Mount(def, cfg)
}

// MountNamed instantiates a previously registered component by name.
func (e *Engine) MountNamed(component string, cfg ports.MountConfig) (domain.NodeID, error) {
	def, err := e.registry.Lookup(component)
	if err != nil {
		return "", err
	}
	return e.tree.Mount(def, cfg)
}

// Send dispatches a message to a node, synchronously running the full
// protocol chain, and returns the resolved effect for diagnostics.
func (e *Engine) Send(node domain.NodeID, msg domain.Message) (domain.Effect, error) {
	return e.tree.Send(node, msg)
}

// ShouldUpdate reports whether the subtree rooted at node must be recomputed
// for the proposed instantiation.
func (e *Engine) ShouldUpdate(node domain.NodeID, proposed domain.UpdateCandidate) (bool, error) {
	return e.tree.ShouldUpdate(node, proposed)
}

// Unmount removes a node and its subtree.
func (e *Engine) Unmount(node domain.NodeID) error {
	return e.tree.Unmount(node)
}

// Root returns the root node's ID, or empty if nothing is mounted.
func (e *Engine) Root() domain.NodeID {
	return e.tree.Root()
}

// ComponentOf returns the component name of a mounted node.
func (e *Engine) ComponentOf(node domain.NodeID) (string, error) {
	return e.tree.ComponentOf(node)
}

// Render invokes a node's render function with its current state.
func (e *Engine) Render(node domain.NodeID) (string, error) {
	return e.tree.Render(node)
}

// Snapshot builds a serializable view of the whole tree.
func (e *Engine) Snapshot(sessionID string) *domain.TreeSnapshot {
	return e.tree.Snapshot(sessionID)
}
