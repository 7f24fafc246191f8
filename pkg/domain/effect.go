package domain

// NodeID identifies a mounted node within a tree.
type NodeID string

// Effect option tags. A message handler returns a sequence of tagged options;
// the resolver folds them into a single Effect.
const (
	// TagAppState replaces the node's application state.
	TagAppState = "app-state"
	// TagLocalState replaces the node's local state.
	TagLocalState = "local-state"
	// TagAction emits an upward-bubbling action.
	TagAction = "action"
)

// EffectOpt is a single tagged option in a handler result.
// Use the AppState, LocalState and Emit constructors; hand-built options with
// a tag outside the known set fail resolution with ErrInvalidEffectTag.
type EffectOpt struct {
	Tag   string
	Value any
}

// HandlerResult is the raw return value of a message handler or mount hook:
// an ordered sequence of tagged options. State tags are last-write-wins;
// action tags accumulate in emission order.
type HandlerResult []EffectOpt

// AppState declares a new application state for the handling node.
func AppState(v any) EffectOpt { return EffectOpt{Tag: TagAppState, Value: v} }

// LocalState declares a new local state for the handling node.
func LocalState(v any) EffectOpt { return EffectOpt{Tag: TagLocalState, Value: v} }

// Emit declares an action to bubble toward the root.
func Emit(action Action) EffectOpt { return EffectOpt{Tag: TagAction, Value: action} }

type keepMarker struct{}

// Keep is the sentinel meaning "no change" for a state slot. It is distinct
// from every valid state value, including nil, so a handler can set a state
// to nil and still be distinguished from one that left it alone.
var Keep any = &keepMarker{}

// Effect is the normalized result of resolving a handler's return value.
// A state slot holds Keep when the handler did not touch it.
type Effect struct {
	AppState   any
	LocalState any
	Actions    []Action
}

// KeepsAppState reports whether the effect leaves application state untouched.
func (e Effect) KeepsAppState() bool { return e.AppState == Keep }

// KeepsLocalState reports whether the effect leaves local state untouched.
func (e Effect) KeepsLocalState() bool { return e.LocalState == Keep }

// NoEffect returns an Effect that changes nothing and emits nothing.
func NoEffect() Effect {
	return Effect{AppState: Keep, LocalState: Keep}
}
