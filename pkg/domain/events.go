package domain

import "time"

// DispatchEvent describes one completed send on a node.
type DispatchEvent struct {
	Timestamp        time.Time
	Node             NodeID
	Component        string
	Depth            int // re-entrancy depth within the dispatch chain
	AppStateChanged  bool
	LocalStateChange bool
	Actions          int
}

// ActionEvent describes one reducer consultation during action routing.
type ActionEvent struct {
	Timestamp   time.Time
	Origin      NodeID // node whose subtree emitted the action
	Node        NodeID // ancestor whose reducer was consulted
	Transformed bool   // reducer replaced the action
	Consumed    bool   // reducer stopped the ascent
	Dropped     bool   // action reached the root unconsumed
}

// CommitEvent describes an application-state commit on an owning node.
type CommitEvent struct {
	Timestamp time.Time
	Node      NodeID
	Component string
	Reacted   bool // commit cascaded through a reaction
}

// MountEvent describes a node entering or leaving the tree.
type MountEvent struct {
	Timestamp time.Time
	Node      NodeID
	Component string
	Parent    NodeID
}

// LifecycleHooks defines callbacks for runtime observability. All callbacks
// are optional and run synchronously inside the dispatch chain; they must not
// call back into the tree.
type LifecycleHooks struct {
	OnDispatch func(*DispatchEvent)
	OnAction   func(*ActionEvent)
	OnCommit   func(*CommitEvent)
	OnMount    func(*MountEvent)
	OnUnmount  func(*MountEvent)
}
