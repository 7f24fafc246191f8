package domain_test

import (
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSnapshot() *domain.TreeSnapshot {
	return &domain.TreeSnapshot{
		SessionID: "s1",
		Root:      "root",
		Nodes: []domain.NodeSnapshot{
			{ID: "root", Component: "panel", OwnsState: true, AppState: map[string]any{"on": false}},
			{ID: "child", Component: "toggle", Parent: "root", OwnsState: true, AppState: false, Reacts: true},
		},
	}
}

func TestDiff_InitialLoad(t *testing.T) {
	snap := baseSnapshot()
	diff := domain.Diff(nil, snap)
	require.NotNil(t, diff)
	assert.Equal(t, "s1", diff.SessionID)
	require.NotNil(t, diff.Root)
	assert.Equal(t, domain.NodeID("root"), *diff.Root)
	assert.Len(t, diff.Added, 2)
	assert.Empty(t, diff.Changed)
	assert.Empty(t, diff.Removed)
}

func TestDiff_NoChanges(t *testing.T) {
	assert.Nil(t, domain.Diff(baseSnapshot(), baseSnapshot()))
}

func TestDiff_ChangedState(t *testing.T) {
	old := baseSnapshot()
	new := baseSnapshot()
	new.Nodes[1].AppState = true

	diff := domain.Diff(old, new)
	require.NotNil(t, diff)
	require.Len(t, diff.Changed, 1)
	assert.Equal(t, domain.NodeID("child"), diff.Changed[0].ID)
	assert.Equal(t, true, diff.Changed[0].AppState)
	assert.Nil(t, diff.Root)
}

func TestDiff_AddedAndRemoved(t *testing.T) {
	old := baseSnapshot()
	new := baseSnapshot()
	new.Nodes = new.Nodes[:1]
	new.Nodes = append(new.Nodes, domain.NodeSnapshot{ID: "other", Component: "badge", Parent: "root"})

	diff := domain.Diff(old, new)
	require.NotNil(t, diff)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, domain.NodeID("other"), diff.Added[0].ID)
	require.Len(t, diff.Removed, 1)
	assert.Equal(t, domain.NodeID("child"), diff.Removed[0])
}

func TestDiff_NilNewSnapshot(t *testing.T) {
	assert.Nil(t, domain.Diff(baseSnapshot(), nil))
}

func TestTreeSnapshot_Clone(t *testing.T) {
	snap := baseSnapshot()
	clone := snap.Clone()
	require.NotNil(t, clone)

	clone.Nodes[0].AppState = "mutated"
	assert.NotEqual(t, snap.Nodes[0].AppState, clone.Nodes[0].AppState)
}
