package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidEffectTag is returned when a handler result uses a tag outside
// the known set. It is fatal to the current dispatch.
var ErrInvalidEffectTag = errors.New("invalid effect tag")

// ErrUnresolvedReactionTarget is returned when a reaction's target cannot be
// resolved at fire time, e.g. a parent-targeted reaction on a node with no
// live parent.
var ErrUnresolvedReactionTarget = errors.New("unresolved reaction target")

// ErrNodeNotFound is returned when a message addresses a node that is not
// mounted in the tree.
var ErrNodeNotFound = errors.New("node not found")

// ErrComponentNotFound is returned when a registry lookup misses.
var ErrComponentNotFound = errors.New("component not found")

// ErrMessageNotRegistered is returned when decoding a message whose type was
// never registered for the target component.
var ErrMessageNotRegistered = errors.New("message not registered")

// ErrSessionNotFound is returned when a session ID cannot be found in a
// store or manager.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when creating a session whose ID is taken.
var ErrSessionExists = errors.New("session already exists")

// DerivationError wraps a failure inside user-supplied derivation logic: a
// message handler, a locals function, an initial-state function or a mount
// hook. It is not recovered locally; state committed earlier in the same
// dispatch chain stands.
type DerivationError struct {
	Node  NodeID
	Stage string
	Err   error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("node %q: %s failed: %v", e.Node, e.Stage, e.Err)
}

func (e *DerivationError) Unwrap() error { return e.Err }
