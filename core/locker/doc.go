// Package locker provides keyed mutual exclusion for reconciliation scopes.
//
// Two runs for the same (ATS, company) pair must never interleave: the second
// would see a half-applied catalog and could close jobs the first one just
// inserted. Every driver here implements the same contract:
//
//	unlock, err := l.Lock(ctx, scope.Key())
//	if err != nil {
//	    return err
//	}
//	defer unlock()
//
// # Drivers
//
//   - local: in-process channel semaphores. Enough for a single server.
//   - file: one lock file per key using flock(2). Serializes a CLI crawl
//     against a running server on the same host.
//   - redis: SET NX PX lease with a token-checked release. For several
//     hosts sharing one database.
//
// The unique index on the catalog table stays the final backstop regardless
// of the driver.
package locker
