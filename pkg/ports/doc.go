/*
Package ports defines the boundary contracts of the Espalier runtime.

These interfaces and function types decouple the protocol core from the
authoring layer above it (component definitions, message handlers, render
functions) and from the infrastructure below it (snapshot persistence,
locking).

# Key Contracts

  - Definition: everything the runtime needs to know about a component type.
  - Handler: the per-component message handler consumed by the dispatcher.
  - SnapshotStore: persistence of tree snapshots for sessions.
  - Locker: locking for concurrent session access across replicas.
*/
package ports
