// Package orchestrator builds a roadmap tree top-down, one level at a time.
//
// Every non-leaf node is expanded in two steps: the children of the node
// are requested in a single structured call and saved as shells (identity,
// name and goal but no children), and only then is each shell expanded in
// turn. Tasks are generated fully formed under their story. Because shells
// reach disk before any of them is expanded, a failure loses at most the
// expansion that was in flight, and Resume can continue from the first
// childless node.
//
// Generate and Resume share one traversal; Resume additionally skips
// subtrees that are already complete.
//
// Example usage:
//
//	registry := api.NewRegistry()
//	registry.Register(api.ProviderAnthropic, client)
//	orch, err := orchestrator.New(orchestrator.RequiredConfig{
//		Clients:  registry,
//		Provider: api.ProviderAnthropic,
//		Saver:    storage.NewManager(".arbor/roadmaps"),
//	})
//	rm, err := orch.Generate(ctx, projectContext)
package orchestrator
