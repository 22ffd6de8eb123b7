// Package idgen wraps the UUID generator used for request, job and sub-job
// identifiers so that tests can replace it with a deterministic sequence.
package idgen
