// Package bulk defines the frozen bulk request, the plan-time validation of
// target sets, the extraction of the concurrency policy and the batch window
// types the orchestrator works with.
package bulk
