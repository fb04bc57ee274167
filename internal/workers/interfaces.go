// Package workers runs the client's periodic background jobs: the
// connectivity prober and the sync retry job. Workers is an aggregate that
// starts and stops them together.
package workers

import (
	"context"
	"time"
)

// Worker is a background job with an explicit lifecycle.
type Worker interface {
	// Start launches the job. A running job is stopped first.
	Start(ctx context.Context)

	// Stop cancels the job and blocks until it has exited. Safe to call
	// when the job is not running.
	Stop()
}

// Syncer is the part of the sync orchestrator the sync job drives.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Prober probes the remote store once and updates the connectivity signal.
type Prober interface {
	Probe(ctx context.Context) bool
}

// Default intervals, used when the configured value is not positive.
const (
	DefaultSyncInterval  = 5 * time.Minute
	DefaultProbeInterval = 15 * time.Second
)
