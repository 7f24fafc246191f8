/*
Package observability provides Prometheus metrics for the espalier engine.

Metrics are fed through lifecycle hooks, so they can be combined with any
other hooks an application installs.
*/
package observability
