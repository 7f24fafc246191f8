package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract verifies that a SnapshotStore implementation
// adheres to the interface contract. Adapter test packages call it against
// their concrete store.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	snap := &domain.TreeSnapshot{
		SessionID: sessionID,
		Root:      "node-1",
		Nodes: []domain.NodeSnapshot{
			{ID: "node-1", Component: "counter", OwnsState: true, AppState: 3},
			{ID: "node-2", Component: "toggle", Parent: "node-1", OwnsState: true, AppState: true, Reacts: true},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.Root, loaded.Root)
		require.Len(t, loaded.Nodes, 2)
		assert.Equal(t, domain.NodeID("node-2"), loaded.Nodes[1].ID)
		// JSON-backed stores may widen numeric state; only require presence.
		assert.NotNil(t, loaded.Nodes[0].AppState)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, snap))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete Non-Existent", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "non-existent-"+sessionID))
	})
}
