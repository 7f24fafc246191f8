package adapters_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/espalier/internal/adapters"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := adapters.NewFileStore(t.TempDir())
	ports.RunSnapshotStoreContract(t, store)
}

func TestFileStore_DefaultBasePath(t *testing.T) {
	store := adapters.NewFileStore("")
	assert.Equal(t, filepath.Join(".espalier", "sessions"), store.BasePath)
}

func TestFileStore_EmptySessionID(t *testing.T) {
	store := adapters.NewFileStore(t.TempDir())
	ctx := context.Background()

	err := store.Save(ctx, "", &domain.TreeSnapshot{})
	assert.Error(t, err)

	_, err = store.Load(ctx, "")
	assert.Error(t, err)

	err = store.Delete(ctx, "")
	assert.Error(t, err)
}

func TestFileStore_List(t *testing.T) {
	store := adapters.NewFileStore(t.TempDir())
	ctx := context.Background()

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	require.NoError(t, store.Save(ctx, "alpha", &domain.TreeSnapshot{SessionID: "alpha"}))
	require.NoError(t, store.Save(ctx, "beta", &domain.TreeSnapshot{SessionID: "beta"}))

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, sessions)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := adapters.NewFileStore(filepath.Join(t.TempDir(), "does-not-exist"))

	sessions, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
