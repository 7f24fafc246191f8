package observability

import (
	"testing"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bump struct{}
type emit struct{}

func counterDef() ports.Definition {
	return ports.Definition{
		Name: "counter",
		Handler: func(msg domain.Message, appState, localState any, locals, args []any) (domain.HandlerResult, error) {
			switch msg.(type) {
			case bump:
				return domain.HandlerResult{domain.AppState(appState.(int) + 1)}, nil
			case emit:
				return domain.HandlerResult{domain.Emit("noise")}, nil
			}
			return nil, nil
		},
	}
}

func TestMetrics_DispatchAndCommit(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	eng := espalier.New(espalier.WithLifecycleHooks(metrics.Hooks()))
	root, err := eng.Mount(counterDef(), ports.MountConfig{AppState: 0})
	require.NoError(t, err)

	_, err = eng.Send(root, bump{})
	require.NoError(t, err)
	_, err = eng.Send(root, bump{})
	require.NoError(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.dispatches.WithLabelValues("counter")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.commits.WithLabelValues("counter")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.liveNodes))
}

func TestMetrics_DroppedActions(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	eng := espalier.New(espalier.WithLifecycleHooks(metrics.Hooks()))
	root, err := eng.Mount(counterDef(), ports.MountConfig{AppState: 0})
	require.NoError(t, err)

	// No reducer anywhere, so the action falls off the root.
	_, err = eng.Send(root, emit{})
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.actionsDropped))
}

func TestMetrics_LiveNodesOnUnmount(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	eng := espalier.New(espalier.WithLifecycleHooks(metrics.Hooks()))
	root, err := eng.Mount(counterDef(), ports.MountConfig{AppState: 0})
	require.NoError(t, err)
	_, err = eng.Mount(counterDef(), ports.MountConfig{Parent: root})
	require.NoError(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.liveNodes))

	require.NoError(t, eng.Unmount(root))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.liveNodes))
}

func TestChain_FansOut(t *testing.T) {
	var a, b int
	chained := Chain(
		domain.LifecycleHooks{OnCommit: func(*domain.CommitEvent) { a++ }},
		domain.LifecycleHooks{OnCommit: func(*domain.CommitEvent) { b++ }},
	)

	chained.OnCommit(&domain.CommitEvent{})
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
