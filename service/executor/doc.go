// Package executor bridges triggered sub-jobs with the registered action
// services: it resolves the action, allocates its output and invokes it with
// the sub-job call.
package executor
