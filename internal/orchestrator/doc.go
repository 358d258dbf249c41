// Package orchestrator answers one request with several agents working in
// parallel.
//
// A run has three stages:
//   - Decompose: a single model call splits the request into one
//     sub-question per agent, falling back to template questions when the
//     reply is unusable.
//   - Dispatch: each sub-question runs in its own agent loop with a private
//     conversation and tool registry, bounded by one shared deadline.
//     Outcomes are collected by agent index, never by completion order.
//   - Synthesize: a final tool-less call merges every outcome, failed ones
//     included, into one answer.
//
// Example usage:
//
//	o := orchestrator.New(gateway, orchestrator.WithAgents(4))
//	res, err := o.Orchestrate(ctx, "Compare Go and Rust for CLI tools")
package orchestrator
