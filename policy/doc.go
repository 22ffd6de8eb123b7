// Package policy provides optional declarative rules applied to bulk actions:
// which actions may be planned at all, whether a human must approve them, and
// how sub-job failures affect the aggregate job.
package policy
