// Package engine is an in-process engine for bulk jobs. It dispatches batch
// windows in offset order through the orchestrator, enforces the concurrency
// cap of every job with a bounded errgroup and executes sub-jobs with the
// executor, isolating their failures.
package engine
