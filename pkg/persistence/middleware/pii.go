package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks map values under keys
// matching the patterns, in every node's application and local state, before
// the snapshot is persisted. The in-memory snapshot is left untouched.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, snap *domain.TreeSnapshot) error {
	cloned := snap.Clone()
	for i := range cloned.Nodes {
		cloned.Nodes[i].AppState = maskValue(cloned.Nodes[i].AppState, m.patterns)
		cloned.Nodes[i].LocalState = maskValue(cloned.Nodes[i].LocalState, m.patterns)
	}

	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.TreeSnapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

// Helpers

// maskValue returns a masked copy of v when it is a string-keyed map; other
// values pass through unchanged. Nested maps are handled recursively.
func maskValue(v any, patterns []*regexp.Regexp) any {
	subMap, ok := v.(map[string]any)
	if !ok {
		return v
	}

	out := make(map[string]any, len(subMap))
	for k, inner := range subMap {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				out[k] = "***"
				masked = true
				break
			}
		}
		if !masked {
			out[k] = maskValue(inner, patterns)
		}
	}
	return out
}
