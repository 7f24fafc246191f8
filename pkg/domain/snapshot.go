package domain

// NodeSnapshot is a serializable view of one mounted node.
type NodeSnapshot struct {
	ID         NodeID `json:"id" yaml:"id"`
	Component  string `json:"component" yaml:"component"`
	Parent     NodeID `json:"parent,omitempty" yaml:"parent,omitempty"`
	OwnsState  bool   `json:"owns_state" yaml:"owns_state"`
	AppState   any    `json:"app_state,omitempty" yaml:"app_state,omitempty"`
	LocalState any    `json:"local_state,omitempty" yaml:"local_state,omitempty"`
	Locals     []any  `json:"locals,omitempty" yaml:"locals,omitempty"`
	Args       []any  `json:"args,omitempty" yaml:"args,omitempty"`
	Reacts     bool   `json:"reacts,omitempty" yaml:"reacts,omitempty"`
	Reduces    bool   `json:"reduces,omitempty" yaml:"reduces,omitempty"`
}

// TreeSnapshot is a serializable view of a whole mounted tree, in mount
// order (root first).
type TreeSnapshot struct {
	SessionID string         `json:"session_id" yaml:"session_id"`
	Root      NodeID         `json:"root,omitempty" yaml:"root,omitempty"`
	Nodes     []NodeSnapshot `json:"nodes" yaml:"nodes"`
}

// Node returns the snapshot for the given id, or nil.
func (s *TreeSnapshot) Node(id NodeID) *NodeSnapshot {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// Clone returns a shallow-per-node copy safe against slice aliasing.
func (s *TreeSnapshot) Clone() *TreeSnapshot {
	if s == nil {
		return nil
	}
	out := &TreeSnapshot{SessionID: s.SessionID, Root: s.Root}
	out.Nodes = make([]NodeSnapshot, len(s.Nodes))
	copy(out.Nodes, s.Nodes)
	return out
}
