package domain

// TreeDiff represents the changes between two tree snapshots. It is designed
// to be serialized to JSON for partial updates on an inspector client.
type TreeDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Root is set when the root node changed (remount).
	Root *NodeID `json:"root,omitempty"`

	// Added contains nodes present only in the new snapshot, in mount order.
	Added []NodeSnapshot `json:"added,omitempty"`

	// Removed contains IDs of nodes no longer mounted.
	Removed []NodeID `json:"removed,omitempty"`

	// Changed contains the full new snapshot of every node whose state,
	// args or wiring differ. Clients replace their copy wholesale.
	Changed []NodeSnapshot `json:"changed,omitempty"`
}

// Diff calculates the difference between two snapshots. If old is nil, the
// result reports the entire new snapshot as added (initial load). A nil
// return means nothing changed.
func Diff(old, new *TreeSnapshot) *TreeDiff {
	if new == nil {
		return nil
	}

	diff := &TreeDiff{SessionID: new.SessionID}

	if old == nil {
		diff.Root = &new.Root
		diff.Added = append(diff.Added, new.Nodes...)
		return diff
	}

	if old.Root != new.Root {
		diff.Root = &new.Root
	}

	for _, n := range new.Nodes {
		prev := old.Node(n.ID)
		if prev == nil {
			diff.Added = append(diff.Added, n)
			continue
		}
		if !nodeEqual(prev, &n) {
			diff.Changed = append(diff.Changed, n)
		}
	}

	for _, n := range old.Nodes {
		if new.Node(n.ID) == nil {
			diff.Removed = append(diff.Removed, n.ID)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *TreeDiff) IsEmpty() bool {
	return d.Root == nil &&
		len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Changed) == 0
}

func nodeEqual(a, b *NodeSnapshot) bool {
	return a.Component == b.Component &&
		a.Parent == b.Parent &&
		a.OwnsState == b.OwnsState &&
		a.Reacts == b.Reacts &&
		a.Reduces == b.Reduces &&
		Equal(a.AppState, b.AppState) &&
		Equal(a.LocalState, b.LocalState) &&
		EqualArgs(a.Locals, b.Locals) &&
		EqualArgs(a.Args, b.Args)
}
