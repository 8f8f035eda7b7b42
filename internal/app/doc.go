// Package app wires configuration, logging, telemetry, services and the
// HTTP router into a runnable application. It owns the server lifecycle
// including graceful shutdown.
package app
