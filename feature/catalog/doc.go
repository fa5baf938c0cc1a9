// Package catalog persists reconciled job postings and serves them over HTTP.
//
// # Storage
//
// Store and Ledger are the GORM implementations of reconcile.Store and
// reconcile.Ledger. The jobs table carries a unique index on
// (ats_type, external_id); inserts use ON CONFLICT DO NOTHING, so a lost race
// surfaces as a zero-row insert which the engine retries as an update. Closing
// missing postings loads the active ids of the scope once and updates the
// stale ones in chunks of 500.
//
// run_logs rows are finalized with an UPDATE guarded by status = 'running'.
// A second finalization affects no rows and returns reconcile.ErrRunFinished.
//
// # Endpoints
//
//	GET /api/jobs             ?limit=1..1000&offset=&company=&title=&ats=&active=
//	GET /api/jobs/summary     total, active, by_ats, top 20 companies
//	GET /api/jobs/:id
//	GET /api/jobs/__debug/db  redacted DSN and live table columns
//	GET /api/runs             ?limit=&offset=&ats=&company=
//	GET /api/runs/:id
//
// company and title are case-insensitive substring filters. Listings are
// ordered by id descending. Errors are returned as {"error": "..."}.
//
// # Usage
//
//	db, _ := database.Connect(cfg.Database)
//	_ = catalog.Migrate(db)
//	engine := reconcile.NewEngine(catalog.NewStore(db))
//	ledger := catalog.NewLedger(db)
//	manager.Register(catalog.NewFeature(db, cfg.Database, logger))
package catalog
