// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL, PostgreSQL or SQLite
// connections from the application's configuration. The catalog is
// dialect-agnostic; SQLite is used for tests and single-node deployments.
//
// # Connect
//
// Connect builds the dialector for the configured driver, applies pool
// settings and pings the database within the configured timeout. SQLite is
// pinned to a single connection, which also keeps ":memory:" databases shared
// across the pool.
//
// # Schema Inspection
//
// GetTableColumns reads the live column list of a table (SHOW COLUMNS,
// PRAGMA table_info or information_schema depending on the dialect).
// MissingColumns compares it against an expected set and backs the debug
// endpoint of the catalog feature.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "jobs")
package database
