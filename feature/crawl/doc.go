// Package crawl drives ATS sources through fetch, normalize and reconcile.
//
// # Pipeline
//
// Orchestrator.RunSource validates a source, resolves its adapter and opens a
// run ledger entry. The adapter fetches raw records, which are normalized and
// handed to the reconcile engine. The ledger entry is finalized with the
// counts or the error, whatever happens inside the run.
//
// RunAll runs every configured source with bounded concurrency. One failing
// source never stops the rest.
//
// # Sources
//
// Sources are read from a YAML file:
//
//	sources:
//	  - ats: join
//	    company: Qdrant
//	    careers_url: https://join.com/companies/qdrant
//
// # Snapshots
//
// When an Archive is attached, the normalized batch of every scope is stored
// in object storage and the delta against the previous batch is logged.
//
// # Endpoints
//
//	GET  /api/jobs/run/:ats  crawl one source now
//	POST /api/crawl          crawl every configured source
//	GET  /api/sources        list configured sources
//	GET  /api/snapshots      list archived snapshots
package crawl
