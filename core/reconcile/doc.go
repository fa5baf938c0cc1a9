// Package reconcile is the change-detection core of the catalog.
//
// Given a freshly fetched batch of normalized postings for one (ATS, company)
// scope, the Engine decides which postings are new, which changed and which
// disappeared, and applies that delta to a Store in one transaction.
//
// # Lifecycle
//
// A posting is identified by (source_system, external_id).
//
//   - First sighting: inserted active, first_seen_at = last_seen_at = now.
//   - Re-sighting: tracked fields are diffed and applied, last_seen_at is
//     bumped, an inactive posting is reactivated. A diff or a reactivation
//     counts as "updated".
//   - Absence: an active posting of the same scope that is missing from the
//     batch is closed (is_active=false, closed=true, closed_at=now).
//
// Postings are never deleted. A batch with no valid record mutates nothing,
// so a transient empty fetch cannot wipe out a company's listings.
//
// # Tracked Fields
//
// TrackedFields is the single list behind both ChangedFields and Fingerprint.
// RawPayload is stored but never compared, so cosmetic churn in source JSON
// does not produce phantom updates.
//
// # Run Ledger
//
// Every invocation is recorded through a Ledger. Track opens the entry,
// runs the work and finalizes it exactly once:
//
//	err := reconcile.Track(ctx, ledger, scope, endpoint, func(ctx context.Context, run *reconcile.RunHandle) error {
//	    run.SetFetched(len(raw))
//	    counts, err := engine.Reconcile(ctx, scope, batch)
//	    run.SetCounts(counts)
//	    return err
//	})
//
// # Snapshots
//
// Diff compares two complete snapshots by fingerprint. It only reports and is
// never used to drive catalog mutations.
package reconcile
