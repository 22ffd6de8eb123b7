// Package progress defines primitives for reporting and aggregating the
// progress of a bulk job while its sub-jobs run.  Counters are updated by the
// engine and snapshotted into the aggregate job record so observers can read
// them without touching engine internals.
package progress
