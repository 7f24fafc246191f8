package domain

// Target designates where a reaction delivers its message. It is a sealed
// union: ParentTarget or NodeTarget.
type Target interface {
	isTarget()
}

// ParentTarget delivers to the firing node's parent. The parent link is
// resolved at fire time, not at reaction construction time, so a reaction
// value may be built once and shared across instantiations.
type ParentTarget struct{}

func (ParentTarget) isTarget() {}

// NodeTarget delivers to an explicit node.
type NodeTarget struct {
	Node NodeID
}

func (NodeTarget) isTarget() {}

// Transform converts a node's new application state (plus any extra arguments
// captured at instantiation) into the message delivered to the target.
type Transform func(newAppState any, extra ...any) Message

// Reaction declares what message to send to what target when the owning
// node's application state changes. A nil *Reaction means no propagation.
//
// Reactions are compared by pointer identity: swapping in a different
// *Reaction value is an update-relevant wiring change even when the target
// and transform are equivalent.
type Reaction struct {
	Target    Target
	Transform Transform
}

// PassThrough builds a reaction whose transform is the identity: the new
// application state itself is delivered to target as the message.
func PassThrough(target Target) *Reaction {
	return &Reaction{
		Target:    target,
		Transform: func(v any, _ ...any) Message { return v },
	}
}

// EmbedInto builds the standard embedding reaction: on every state change the
// parent receives an EmbedAppState carrying the child's new state and the
// given merge function. This wires "local ownership with upward notification"
// without any user-level message handling on the parent.
func EmbedInto(embed EmbedFunc) *Reaction {
	return &Reaction{
		Target: ParentTarget{},
		Transform: func(v any, _ ...any) Message {
			return EmbedAppState{State: v, Embed: embed}
		},
	}
}
