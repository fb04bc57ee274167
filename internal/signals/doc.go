// Package signals holds the external inputs the sync orchestrator reacts to:
// the current user identity, the online/offline flag with its
// connectivity-restored event, and the sync-enabled preference.
//
// Every source is observable. Subscribe returns a [Disposer] that removes the
// callback; the orchestrator keeps the disposers from Start and calls them in
// Stop.
package signals
