package runtime_test

import (
	"testing"

	"github.com/aretw0/espalier/internal/runtime"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitterDef(actions ...domain.Action) ports.Definition {
	return ports.Definition{
		Name: "emitter",
		Handler: func(msg domain.Message, appState, localState any, locals, args []any) (domain.HandlerResult, error) {
			var hr domain.HandlerResult
			for _, a := range actions {
				hr = append(hr, domain.Emit(a))
			}
			return hr, nil
		},
	}
}

func silentDef(name string) ports.Definition {
	return ports.Definition{Name: name}
}

func TestRoute_DropAtRoot(t *testing.T) {
	tree := runtime.NewTree()
	root, err := tree.Mount(silentDef("root"), ports.MountConfig{AppState: "untouched"})
	require.NoError(t, err)
	mid, err := tree.Mount(silentDef("mid"), ports.MountConfig{Parent: root})
	require.NoError(t, err)
	leaf, err := tree.Mount(emitterDef("stray"), ports.MountConfig{Parent: mid})
	require.NoError(t, err)

	var dropped bool
	tree2 := runtime.NewTree(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnAction: func(ev *domain.ActionEvent) {
			dropped = dropped || ev.Dropped
		},
	}))
	root2, err := tree2.Mount(silentDef("root"), ports.MountConfig{AppState: "untouched"})
	require.NoError(t, err)
	leaf2, err := tree2.Mount(emitterDef("stray"), ports.MountConfig{Parent: root2})
	require.NoError(t, err)

	// No reducer anywhere: routing completes without error, no state moves.
	_, err = tree.Send(leaf, "go")
	require.NoError(t, err)
	assert.Equal(t, "untouched", tree.Snapshot("s").Node(root).AppState)

	_, err = tree2.Send(leaf2, "go")
	require.NoError(t, err)
	assert.True(t, dropped, "the drop is observable through hooks, not an error")
}

func TestRoute_FirstActionCompletesBeforeSecond(t *testing.T) {
	var trace []string

	tree := runtime.NewTree()
	grand, err := tree.Mount(ports.Definition{Name: "grand"}, ports.MountConfig{
		AppState: nil,
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			trace = append(trace, "grand:"+action.(string))
			return domain.Pass(action)
		},
	})
	require.NoError(t, err)

	parent, err := tree.Mount(ports.Definition{Name: "parent"}, ports.MountConfig{
		Parent:   grand,
		Embedded: true,
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			trace = append(trace, "parent:"+action.(string))
			return domain.Pass(action)
		},
	})
	require.NoError(t, err)

	leaf, err := tree.Mount(emitterDef("X", "Y"), ports.MountConfig{Parent: parent})
	require.NoError(t, err)

	_, err = tree.Send(leaf, "go")
	require.NoError(t, err)

	// X ascends through every ancestor before Y starts.
	assert.Equal(t, []string{"parent:X", "grand:X", "parent:Y", "grand:Y"}, trace)
}

func TestRoute_ReducerTransformsAction(t *testing.T) {
	var atRoot []string

	tree := runtime.NewTree()
	root, err := tree.Mount(ports.Definition{Name: "root"}, ports.MountConfig{
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			atRoot = append(atRoot, action.(string))
			return domain.Absorb()
		},
	})
	require.NoError(t, err)

	mid, err := tree.Mount(ports.Definition{Name: "mid"}, ports.MountConfig{
		Parent:   root,
		Embedded: true,
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			return domain.Pass("wrapped:" + action.(string))
		},
	})
	require.NoError(t, err)

	leaf, err := tree.Mount(emitterDef("raw"), ports.MountConfig{Parent: mid})
	require.NoError(t, err)

	_, err = tree.Send(leaf, "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"wrapped:raw"}, atRoot)
}

func TestRoute_ReducerAbsorbsMidChain(t *testing.T) {
	var rootSaw int

	tree := runtime.NewTree()
	root, err := tree.Mount(ports.Definition{Name: "root"}, ports.MountConfig{
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			rootSaw++
			return domain.Absorb()
		},
	})
	require.NoError(t, err)

	mid, err := tree.Mount(ports.Definition{Name: "mid"}, ports.MountConfig{
		Parent:   root,
		Embedded: true,
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			return domain.Absorb()
		},
	})
	require.NoError(t, err)

	leaf, err := tree.Mount(emitterDef("evt"), ports.MountConfig{Parent: mid})
	require.NoError(t, err)

	_, err = tree.Send(leaf, "go")
	require.NoError(t, err)
	assert.Zero(t, rootSaw, "absorbed actions do not continue the ascent")
}

func TestRoute_ReducerCommitCascadesReaction(t *testing.T) {
	// An embedded mid node's reducer converts the action into a state
	// change; committing that state must fire the mid node's reaction into
	// the root, exactly like a dispatcher commit.
	tree := runtime.NewTree()

	root, err := tree.Mount(ports.Definition{
		Name: "root",
		Handler: func(msg domain.Message, appState, localState any, locals, args []any) (domain.HandlerResult, error) {
			return domain.HandlerResult{domain.AppState(msg)}, nil
		},
	}, ports.MountConfig{AppState: nil})
	require.NoError(t, err)

	mid, err := tree.Mount(ports.Definition{Name: "mid"}, ports.MountConfig{
		Parent:   root,
		AppState: 0,
		Reaction: domain.PassThrough(domain.ParentTarget{}),
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			return domain.Reduction{AppState: appState.(int) + 1}
		},
	})
	require.NoError(t, err)

	leaf, err := tree.Mount(emitterDef("bump"), ports.MountConfig{Parent: mid})
	require.NoError(t, err)

	_, err = tree.Send(leaf, "go")
	require.NoError(t, err)

	snap := tree.Snapshot("s")
	assert.Equal(t, 1, snap.Node(mid).AppState)
	assert.Equal(t, 1, snap.Node(root).AppState, "mid's reaction relayed the new state to the root")
}

func TestRoute_SelfReduction(t *testing.T) {
	// The emitting node's own reducer is consulted before the action ever
	// enters the router: here it converts the action into an app-state
	// change on the node itself, and nothing bubbles.
	var parentSaw int

	tree := runtime.NewTree()
	parent, err := tree.Mount(ports.Definition{Name: "parent"}, ports.MountConfig{
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			parentSaw++
			return domain.Absorb()
		},
	})
	require.NoError(t, err)

	child, err := tree.Mount(emitterDef("local-event"), ports.MountConfig{
		Parent:   parent,
		Embedded: true,
		AppState: "idle",
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			return domain.Reduction{AppState: "handled"}
		},
	})
	require.NoError(t, err)

	eff, err := tree.Send(child, "go")
	require.NoError(t, err)

	assert.Empty(t, eff.Actions)
	assert.Zero(t, parentSaw)
	assert.Equal(t, "handled", tree.Snapshot("s").Node(child).AppState)
}

func TestRoute_SelfReductionReplacesAction(t *testing.T) {
	var parentSaw []string

	tree := runtime.NewTree()
	parent, err := tree.Mount(ports.Definition{Name: "parent"}, ports.MountConfig{
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			parentSaw = append(parentSaw, action.(string))
			return domain.Absorb()
		},
	})
	require.NoError(t, err)

	child, err := tree.Mount(emitterDef("inner"), ports.MountConfig{
		Parent:   parent,
		Embedded: true,
		Reducer: func(appState any, action domain.Action) domain.Reduction {
			return domain.Pass("outer:" + action.(string))
		},
	})
	require.NoError(t, err)

	_, err = tree.Send(child, "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"outer:inner"}, parentSaw)
}
