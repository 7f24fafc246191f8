package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// Overlay contains dynamic state data to visualize on the tree.
type Overlay struct {
	ChangedNodes []domain.NodeID
	FocusedNode  domain.NodeID
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a tree
// snapshot. It applies semantic styling:
// - Root: ((Circle))
// - State owner: [[Subroutine]]
// - Default: [Rectangle]
// Edges run parent to child; reaction-bearing children use a dotted edge
// back to their parent. Overlay styles (Changed/Focused) apply if provided.
func GenerateMermaid(snap *domain.TreeSnapshot, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range snap.Nodes {
		safeID := sanitizeMermaidID(string(node.ID))

		opener, closer := "[", "]"
		switch {
		case node.ID == snap.Root:
			opener, closer = "((", "))" // Circle
		case node.OwnsState:
			opener, closer = "[[", "]]" // Subroutine
		}

		label := string(node.ID)
		if node.Component != "" {
			label = fmt.Sprintf("%s <br/> %s", node.ID, node.Component)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		if node.Parent != "" {
			safeParent := sanitizeMermaidID(string(node.Parent))
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeParent, safeID))
			if node.Reacts {
				sb.WriteString(fmt.Sprintf("    %s -. ⚡ reaction .-> %s\n", safeID, safeParent))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds
		sb.WriteString("    classDef changed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef focused fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		changedSet := make(map[string]bool)
		for _, id := range overlay.ChangedNodes {
			safeID := sanitizeMermaidID(string(id))
			if !changedSet[safeID] && safeID != "" {
				changedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s changed;\n", safeID))
			}
		}

		if overlay.FocusedNode != "" {
			safeFocused := sanitizeMermaidID(string(overlay.FocusedNode))
			sb.WriteString(fmt.Sprintf("    class %s focused;\n", safeFocused))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
