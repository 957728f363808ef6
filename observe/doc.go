// Package observe instruments cached method invocations.
//
// It wires OpenTelemetry tracing and metrics and a small JSON logger behind
// one Observer, and bundles them as Instruments for the cache interceptor.
// Nothing here touches cached values or keys beyond recording that a lookup
// happened.
package observe
