package domain

// Message is an addressed request sent to a specific node. The protocol
// treats messages as opaque values; components define their own message
// types and switch on them in their handlers.
type Message any

// EmbedFunc merges a child's new application state into its owner's current
// application state, producing the owner's next state.
type EmbedFunc func(current, incoming any) any

// EmbedAppState is the reserved message that replaces a node's application
// state without invoking its handler. The dispatcher resolves it directly to
// an app-state change of Embed(current, State), keeping local state.
//
// This is how a reaction targeting the parent materializes without user code:
// the child's new state arrives at the parent as an EmbedAppState message.
type EmbedAppState struct {
	// State is the incoming value, typically a child's new application state.
	State any

	// Embed merges State into the receiver's current application state.
	// A nil Embed replaces the receiver's state wholesale.
	Embed EmbedFunc
}
