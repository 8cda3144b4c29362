// Package app wires configuration, observability, the dataset store, the
// dashboard services and the HTTP router into a runnable Application.
//
// Initialization order:
//
//	1. OpenTelemetry providers and dashboard metrics
//	2. Dataset store, categorizer and dashboard services
//	3. WebSocket hub, subscribed to store events
//	4. Page templates, middleware chain and routes
//	5. HTTP server
//
// Run blocks until its context is cancelled, then drains in-flight requests,
// closes event-stream clients and flushes telemetry. Errors are returned to
// the caller; the package never exits the process.
package app
