// Package orchestrator is the bulk fan-out core. It plans bulk requests and,
// invoked once per batch window by an engine, resolves the window into units
// of work and triggers exactly one sub-job per unit.
//
// The orchestrator owns no goroutines; scheduling, the concurrency cap and
// sub-job execution belong to the engine behind Trigger.
package orchestrator
