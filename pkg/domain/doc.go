/*
Package domain contains the core value types of the Espalier protocol.

It defines the vocabulary shared by every layer of the runtime: messages,
effects, actions, reactions and tree snapshots. These types carry no behavior
beyond construction and comparison; the dispatch semantics live in
internal/runtime.

Equality throughout the protocol is deep structural equality (see Equal).
Reaction identity, by contrast, is pointer identity: two reactions describe
the same wiring only if they are literally the same *Reaction value.
*/
package domain
