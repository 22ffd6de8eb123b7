// Package status derives the human-readable view of an aggregate bulk job
// from one representative sub-job: the sub-job triggered first.
package status
