// Package tracing wires OpenTelemetry into the fan-out engine.  Planning,
// batch resolution and sub-job execution open spans through StartSpan; spans
// are no-ops until Init (or InitWithExporter) installs a provider.
package tracing
