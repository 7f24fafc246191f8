/*
Package session manages named live engines ("sessions") behind the
single-threaded dispatch protocol.

Each session is one mounted tree. The manager serializes access per session
with ref-counted local locks, optionally coordinates replicas through a
distributed locker, and persists a snapshot after every guarded operation
when a store is configured.
*/
package session
