// Package server runs the HTTP transport of the remote document store.
//
// It owns the server lifecycle: listening, per-request timeouts, signal
// handling and graceful shutdown.
package server
