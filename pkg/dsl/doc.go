/*
Package dsl provides a fluent Go builder for constructing espalier component
trees programmatically.

It lets applications declare a whole mount plan, root plus descendants with
their state ownership, reactions and reducers, and apply it to an engine in
one call, instead of threading parent IDs through repeated Mount calls. This
is particularly useful for static layouts, unit tests, and leveraging IDE
autocompletion/type-checking.

Example usage:

	b := dsl.New()
	root := b.Root(dashboardDef).AppState(dashboardState{})
	root.Child(toggleDef).
		ID("consent").
		AppState(false).
		React(domain.EmbedInto(mergeConsent))

	ids, err := b.Apply(eng)
	// ids["consent"] is the toggle's NodeID
*/
package dsl
