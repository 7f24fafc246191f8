package domain

// Action is an unaddressed, upward-bubbling event. The routing machinery
// treats it as a black box; only reducers along the ancestor chain interpret
// it.
type Action any

// Reduction is the result of consulting a node's action reducer.
//
// Action carries the action to continue bubbling with (possibly the same
// action unchanged); a nil Action stops the ascent. AppState holds a new
// application state for the reducing node, or Keep for no change. Note the
// zero value: a literal Reduction{Action: a} has AppState nil, which commits
// nil as the new state. Build reductions with Pass or Absorb unless a state
// change is intended.
type Reduction struct {
	Action   Action
	AppState any
}

// ActionReducer is consulted when a node's subtree emits an action. It may
// transform the action, absorb it, or convert it into an application-state
// change on the reducing node. A nil reducer is identity pass-through.
//
// Return Pass(action) to let the action continue and Absorb() to consume it;
// both keep the node's state. Set AppState explicitly only to commit a new
// value.
type ActionReducer func(appState any, action Action) Reduction

// Pass continues the ascent with action unchanged and no state change.
// It is the behavior of the implicit default reducer.
func Pass(action Action) Reduction {
	return Reduction{Action: action, AppState: Keep}
}

// Absorb consumes the action with no state change, stopping the ascent.
func Absorb() Reduction {
	return Reduction{AppState: Keep}
}
