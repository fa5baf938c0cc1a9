// Package models holds the GORM models of the catalog: Job (table jobs)
// and RunLog (table run_logs).
package models
