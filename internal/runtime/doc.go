/*
Package runtime implements the Espalier dispatch protocol: the mounted
component tree, the synchronous message dispatcher, the effect resolver, the
action router, the reaction bridge and the update-skip heuristic.

Dispatch is single-threaded and cooperative. One Send call runs its handler,
resolves effects, commits state, fires reactions and routes actions within
one logical call stack before returning. The only re-entrancy is the designed
one: a reaction firing a nested send, strictly nested and bounded by tree
depth.
*/
package runtime
