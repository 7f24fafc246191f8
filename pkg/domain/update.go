package domain

// UpdateCandidate is the tuple the update-skip heuristic compares: the
// state, args and reaction wiring of a node as currently mounted versus as
// proposed by a new instantiation.
type UpdateCandidate struct {
	AppState   any
	LocalState any
	Args       []any
	Reaction   *Reaction
}

// ShouldUpdate is the default skip policy: update on any difference in
// application state, local state, args (positional structural equality) or
// reaction identity; skip only when everything matches.
//
// The bias is deliberate: a false "skip" loses updates, a false "update"
// only costs a recompute.
func ShouldUpdate(current, proposed UpdateCandidate) bool {
	if current.Reaction != proposed.Reaction {
		return true
	}
	if !Equal(current.AppState, proposed.AppState) {
		return true
	}
	if !Equal(current.LocalState, proposed.LocalState) {
		return true
	}
	if !EqualArgs(current.Args, proposed.Args) {
		return true
	}
	return false
}
