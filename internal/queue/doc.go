// Package queue implements the durable FIFO of mutations the remote store has
// not acknowledged yet, plus the list of changes it rejected for good.
//
// Every change is persisted through [store.LocalStore] before Enqueue
// returns, so a restart resumes with exactly the entries that were pending.
// A drain hands the entries of one user to a commit function as a single
// batch and removes them only when that commit succeeds.
package queue
