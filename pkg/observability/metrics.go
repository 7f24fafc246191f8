package observability

import (
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for engine activity.
type Metrics struct {
	dispatches     *prometheus.CounterVec
	commits        *prometheus.CounterVec
	actionsRouted  prometheus.Counter
	actionsDropped prometheus.Counter
	liveNodes      prometheus.Gauge
	dispatchDepth  prometheus.Histogram
}

// NewMetrics registers the engine collectors on the given registerer. Pass
// prometheus.DefaultRegisterer for the process-wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_dispatches_total",
				Help: "Total number of messages dispatched, by component",
			},
			[]string{"component"},
		),
		commits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_commits_total",
				Help: "Total number of application state commits, by component",
			},
			[]string{"component"},
		),
		actionsRouted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "espalier_actions_routed_total",
				Help: "Total number of reducer consultations during action routing",
			},
		),
		actionsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "espalier_actions_dropped_total",
				Help: "Total number of actions that reached the root unconsumed",
			},
		),
		liveNodes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "espalier_live_nodes",
				Help: "Number of nodes currently mounted",
			},
		),
		dispatchDepth: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "espalier_dispatch_depth",
				Help:    "Re-entrancy depth observed per dispatch",
				Buckets: prometheus.LinearBuckets(0, 1, 8),
			},
		),
	}
}

// Hooks returns lifecycle hooks that record engine activity. Combine with
// other hooks via Chain if the application installs its own.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(e *domain.DispatchEvent) {
			m.dispatches.WithLabelValues(e.Component).Inc()
			m.dispatchDepth.Observe(float64(e.Depth))
		},
		OnCommit: func(e *domain.CommitEvent) {
			m.commits.WithLabelValues(e.Component).Inc()
		},
		OnAction: func(e *domain.ActionEvent) {
			m.actionsRouted.Inc()
			if e.Dropped {
				m.actionsDropped.Inc()
			}
		},
		OnMount: func(e *domain.MountEvent) {
			m.liveNodes.Inc()
		},
		OnUnmount: func(e *domain.MountEvent) {
			m.liveNodes.Dec()
		},
	}
}

// Chain merges several hook sets into one; each callback fans out in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(e *domain.DispatchEvent) {
			for _, h := range hooks {
				if h.OnDispatch != nil {
					h.OnDispatch(e)
				}
			}
		},
		OnAction: func(e *domain.ActionEvent) {
			for _, h := range hooks {
				if h.OnAction != nil {
					h.OnAction(e)
				}
			}
		},
		OnCommit: func(e *domain.CommitEvent) {
			for _, h := range hooks {
				if h.OnCommit != nil {
					h.OnCommit(e)
				}
			}
		},
		OnMount: func(e *domain.MountEvent) {
			for _, h := range hooks {
				if h.OnMount != nil {
					h.OnMount(e)
				}
			}
		},
		OnUnmount: func(e *domain.MountEvent) {
			for _, h := range hooks {
				if h.OnUnmount != nil {
					h.OnUnmount(e)
				}
			}
		},
	}
}
