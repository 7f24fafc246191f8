package runtime_test

import (
	"testing"

	"github.com/aretw0/espalier/internal/runtime"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ActionAccumulationOrder(t *testing.T) {
	def := ports.Definition{
		Name: "multi",
		Handler: func(msg domain.Message, appState, localState any, locals, args []any) (domain.HandlerResult, error) {
			return domain.HandlerResult{
				domain.Emit("X"),
				domain.AppState(1),
				domain.Emit("Y"),
				domain.Emit("X"), // duplicates allowed
			}, nil
		},
	}

	tree := runtime.NewTree()
	root, err := tree.Mount(def, ports.MountConfig{AppState: 0})
	require.NoError(t, err)

	eff, err := tree.Send(root, "go")
	require.NoError(t, err)
	assert.Equal(t, []domain.Action{"X", "Y", "X"}, eff.Actions)
	assert.Equal(t, 1, eff.AppState)
}

func TestResolve_SelfReductionOverridesAppStateTag(t *testing.T) {
	// The self-reduction resolves after the tag writes, so an app-state
	// change it produces wins over the handler's own app-state option,
	// regardless of option order.
	def := ports.Definition{
		Name: "mixed",
		Handler: func(msg domain.Message, appState, localState any, locals, args []any) (domain.HandlerResult, error) {
			return domain.HandlerResult{
				domain.Emit("bump"),
				domain.AppState("from-tag"),
			}, nil
		},
	}

	tree := runtime.NewTree()
	root, err := tree.Mount(def, ports.MountConfig{
		AppState: "initial",
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			return domain.Reduction{AppState: "from-reduction"}
		},
	})
	require.NoError(t, err)

	eff, err := tree.Send(root, "go")
	require.NoError(t, err)
	assert.Equal(t, "from-reduction", eff.AppState)
	assert.Empty(t, eff.Actions)
	assert.Equal(t, "from-reduction", tree.Snapshot("s").Node(root).AppState)
}

func TestResolve_NilLocalStateIsAChange(t *testing.T) {
	// Keep is distinct from nil: setting local state to nil is a real write.
	def := ports.Definition{
		Name: "nuller",
		InitialState: func(appState any, locals, args []any) (any, error) {
			return "something", nil
		},
		Handler: func(msg domain.Message, appState, localState any, locals, args []any) (domain.HandlerResult, error) {
			return domain.HandlerResult{domain.LocalState(nil)}, nil
		},
	}

	tree := runtime.NewTree()
	root, err := tree.Mount(def, ports.MountConfig{})
	require.NoError(t, err)

	eff, err := tree.Send(root, "clear")
	require.NoError(t, err)
	assert.False(t, eff.KeepsLocalState())
	assert.Nil(t, tree.Snapshot("s").Node(root).LocalState)
}
