package server

import "context"

// Server defines the lifecycle contract of the transport server.
type Server interface {
	// RunServer serves until SIGTERM, SIGINT or SIGQUIT and then shuts down
	// gracefully.
	RunServer()

	// Run serves until ctx is done, then shuts down. It returns the first
	// serving error, if any.
	Run(ctx context.Context) error

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown()
}
